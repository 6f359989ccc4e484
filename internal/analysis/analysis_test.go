package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"finreport/internal/core"
)

func tx(t *testing.T, ts, card, amount, category, desc string) core.Transaction {
	t.Helper()
	at, err := core.ParseTimestamp(ts)
	if err != nil {
		t.Fatalf("bad fixture timestamp %q: %v", ts, err)
	}
	return core.Transaction{
		OperatedAt:  at,
		CardID:      card,
		Category:    category,
		Description: desc,
		Amount:      core.MustAmount(amount),
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", s, err)
	}
	return d
}

func scenarioA(t *testing.T) []core.Transaction {
	return []core.Transaction{
		tx(t, "01.08.2024 10:00:00", "*4467", "-1000", "Еда", "Кафе"),
		tx(t, "02.08.2024 11:00:00", "*5907", "-2000", "Транспорт", "Метро"),
		tx(t, "03.08.2024 12:00:00", "*4467", "-1500", "Развлечения", "Кино"),
	}
}

func TestSpendingByCategoryWindow(t *testing.T) {
	ctx := context.Background()
	txs := []core.Transaction{
		tx(t, "10.05.2024 09:00:00", "*1", "-10", "Супермаркеты", "before window"),
		tx(t, "11.05.2024 00:00:00", "*1", "-20", "Супермаркеты", "window start"),
		tx(t, "01.07.2024 12:00:00", "*1", "-30", "Супермаркеты", "Магнит"),
		tx(t, "02.07.2024 12:00:00", "*1", "30", "Супермаркеты", "refund"),
		tx(t, "03.07.2024 12:00:00", "*1", "-40", "супермаркеты", "lowercase"),
		tx(t, "04.07.2024 12:00:00", "*1", "0", "Супермаркеты", "zero"),
		tx(t, "09.08.2024 00:00:00", "*1", "-50", "Супермаркеты", "end midnight"),
		tx(t, "09.08.2024 18:00:00", "*1", "-55", "Супермаркеты", "later on end day"),
		tx(t, "10.08.2024 00:00:00", "*1", "-60", "Супермаркеты", "after window"),
	}
	orig := append([]core.Transaction(nil), txs...)

	got := SpendingByCategory(ctx, txs, "Супермаркеты", date(t, "09.08.2024"))

	var descs []string
	for _, g := range got {
		descs = append(descs, g.Description)
		if g.Amount.Cents >= 0 {
			t.Fatalf("non-expense in result: %+v", g)
		}
	}
	want := []string{"window start", "Магнит", "end midnight"}
	if !reflect.DeepEqual(descs, want) {
		t.Fatalf("got %v, want %v", descs, want)
	}
	if !reflect.DeepEqual(txs, orig) {
		t.Fatal("input slice was modified")
	}
}

func TestSpendingByCategoryNoMatch(t *testing.T) {
	got := SpendingByCategory(context.Background(), scenarioA(t), "Нет такой", date(t, "08.08.2024"))
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestReferenceDate(t *testing.T) {
	now := time.Date(2024, 8, 8, 12, 34, 56, 0, time.UTC)
	d, err := ReferenceDate("", now)
	if err != nil || !d.Equal(time.Date(2024, 8, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("default reference date: %v %v", d, err)
	}
	d, err = ReferenceDate("03.08.2024", now)
	if err != nil || d.Day() != 3 {
		t.Fatalf("explicit reference date: %v %v", d, err)
	}
	_, err = ReferenceDate("2024/08/03", now)
	var pe *core.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestAggregateCardsScenarioA(t *testing.T) {
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	got, err := AggregateCards(context.Background(), scenarioA(t), w)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []core.CardSummary{
		{LastDigits: "4467", TotalSpent: core.MustAmount("2500"), Cashback: core.MustAmount("25")},
		{LastDigits: "5907", TotalSpent: core.MustAmount("2000"), Cashback: core.MustAmount("20")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestAggregateCardsTotals(t *testing.T) {
	txs := []core.Transaction{
		tx(t, "01.08.2024 10:00:00", "5536 91** **** 8446", "-586.92", "Супермаркеты", "Магнит"),
		tx(t, "01.08.2024 11:00:00", "*6790", "199.99", "Пополнения", "refund"),
		tx(t, "02.08.2024 10:00:00", "5536 91** **** 8446", "1000.10", "Переводы", "income"),
		tx(t, "03.08.2024 10:00:00", "*6790", "-0.02", "Прочее", "fee"),
		tx(t, "01.06.2024 10:00:00", "*0000", "-5000", "Прочее", "outside window"),
	}
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	got, err := AggregateCards(context.Background(), txs, w)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cards, got %+v", got)
	}
	// 586.92 + 1000.10 = 1587.02 -> cashback 15
	if got[0].LastDigits != "8446" || got[0].TotalSpent.Cents != 158702 || got[0].Cashback.Cents != 1500 {
		t.Fatalf("unexpected first card: %+v", got[0])
	}
	// 199.99 + 0.02 = 200.01 -> cashback 2
	if got[1].LastDigits != "6790" || got[1].TotalSpent.Cents != 20001 || got[1].Cashback.Cents != 200 {
		t.Fatalf("unexpected second card: %+v", got[1])
	}
}

func TestAggregateCardsMissingCard(t *testing.T) {
	txs := scenarioA(t)
	txs[1].CardID = ""
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	got, err := AggregateCards(context.Background(), txs, w)
	var se *core.SchemaError
	if !errors.As(err, &se) || se.Row != 2 {
		t.Fatalf("expected SchemaError at row 2, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %+v", got)
	}
}

func TestAggregateCardsShortID(t *testing.T) {
	txs := []core.Transaction{tx(t, "01.08.2024 10:00:00", "*12", "-1", "A", "B")}
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	got, err := AggregateCards(context.Background(), txs, w)
	if err != nil || len(got) != 1 || got[0].LastDigits != "*12" {
		t.Fatalf("unexpected: %+v %v", got, err)
	}
}

func TestReferenceDayAfterMidnightExcluded(t *testing.T) {
	ctx := context.Background()
	txs := []core.Transaction{tx(t, "08.08.2024 15:00:00", "*4467", "-100", "Еда", "Кафе")}
	ref := date(t, "08.08.2024")

	if got := SpendingByCategory(ctx, txs, "Еда", ref); len(got) != 0 {
		t.Fatalf("category hits = %d, want 0", len(got))
	}
	w := core.TrailingWindow(ref, core.ReportWindowDays)
	cards, err := AggregateCards(ctx, txs, w)
	if err != nil || len(cards) != 0 {
		t.Fatalf("cards = %+v, err = %v; want none", cards, err)
	}
	if top := TopTransactions(txs, w, core.TopTransactionsN); len(top) != 0 {
		t.Fatalf("top = %+v, want none", top)
	}
}

func TestTopTransactions(t *testing.T) {
	txs := []core.Transaction{
		tx(t, "01.08.2024 10:00:00", "*1", "-5000", "A", "deep expense"),
		tx(t, "01.08.2024 11:00:00", "*1", "100", "B", "tie first"),
		tx(t, "02.08.2024 10:00:00", "*1", "6850", "Переводы", "big income"),
		tx(t, "03.08.2024 10:00:00", "*1", "100", "C", "tie second"),
		tx(t, "04.08.2024 10:00:00", "*1", "-1", "D", "small"),
		tx(t, "05.08.2024 10:00:00", "*1", "-10", "E", "dropped"),
		tx(t, "06.08.2024 10:00:00", "*1", "100", "F", "tie third"),
		tx(t, "01.01.2024 10:00:00", "*1", "99999", "G", "outside"),
	}
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	got := TopTransactions(txs, w, core.TopTransactionsN)

	want := []core.TopTransaction{
		{Date: "02.08.2024", Amount: core.MustAmount("6850"), Category: "Переводы", Description: "big income"},
		{Date: "01.08.2024", Amount: core.MustAmount("100"), Category: "B", Description: "tie first"},
		{Date: "03.08.2024", Amount: core.MustAmount("100"), Category: "C", Description: "tie second"},
		{Date: "06.08.2024", Amount: core.MustAmount("100"), Category: "F", Description: "tie third"},
		{Date: "04.08.2024", Amount: core.MustAmount("-1"), Category: "D", Description: "small"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestTopTransactionsFewerThanN(t *testing.T) {
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	got := TopTransactions(scenarioA(t), w, core.TopTransactionsN)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Amount.Cents < got[i].Amount.Cents {
			t.Fatalf("not descending: %+v", got)
		}
	}
	if got[0].Description != "Кафе" || got[2].Description != "Метро" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestEmptyInput(t *testing.T) {
	w := core.TrailingWindow(date(t, "08.08.2024"), core.ReportWindowDays)
	cards, err := AggregateCards(context.Background(), nil, w)
	if err != nil || cards == nil || len(cards) != 0 {
		t.Fatalf("cards: %#v %v", cards, err)
	}
	top := TopTransactions(nil, w, core.TopTransactionsN)
	if top == nil || len(top) != 0 {
		t.Fatalf("top: %#v", top)
	}
}

func TestSearch(t *testing.T) {
	txs := []core.Transaction{
		tx(t, "01.08.2024 10:00:00", "*1", "-10", "Супермаркеты", "Магнит"),
		tx(t, "02.08.2024 10:00:00", "*1", "-20", "Магнитики", "Сувениры"),
		tx(t, "03.08.2024 10:00:00", "*1", "-30", "Кафе", "магнит"),
	}
	got := Search(context.Background(), txs, "Магнит")
	if len(got) != 2 || got[0].Description != "Магнит" || got[1].Category != "Магнитики" {
		t.Fatalf("unexpected search result: %+v", got)
	}
}

func TestGreeting(t *testing.T) {
	cases := []struct {
		hour, min int
		want      string
	}{
		{0, 0, GreetingMorning},
		{9, 0, GreetingMorning},
		{11, 59, GreetingMorning},
		{12, 0, GreetingDay},
		{15, 0, GreetingDay},
		{18, 0, GreetingEvening},
		{19, 0, GreetingEvening},
		{22, 0, GreetingNight},
		{23, 0, GreetingNight},
	}
	for _, tc := range cases {
		at := time.Date(2024, 8, 8, tc.hour, tc.min, 0, 0, time.UTC)
		if got := Greeting(at); got != tc.want {
			t.Errorf("Greeting(%02d:%02d) = %q, want %q", tc.hour, tc.min, got, tc.want)
		}
	}
}
