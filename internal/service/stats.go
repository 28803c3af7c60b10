package service

import (
	"sort"
	"time"

	"github.com/iliyamo/raffle-reservation/internal/model"
)

// DailySales aggregates the entries committed on one calendar day (UTC).
type DailySales struct {
	Date            string `json:"date"` // YYYY-MM-DD
	Tickets         int    `json:"tickets"`
	AmountCents     int64  `json:"amount_cents"`
	CumulativeCents int64  `json:"cumulative_cents"`
}

// WeekdaySales counts entries per weekday, Sunday first.
type WeekdaySales struct {
	Weekday string `json:"weekday"`
	Tickets int    `json:"tickets"`
}

// Buyer groups entries by contact number.
type Buyer struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Tickets       int    `json:"tickets"`
}

// Stats is the admin dashboard.
type Stats struct {
	TotalSlots      int            `json:"total_slots"`
	TotalEntries    int            `json:"total_entries"`
	PaidEntries     int            `json:"paid_entries"`
	UnpaidEntries   int            `json:"unpaid_entries"`
	FreeSlots       int            `json:"free_slots"`
	PriceCents      int64          `json:"price_cents"`
	GrossCents      int64          `json:"gross_cents"`       // every committed entry
	CollectedCents  int64          `json:"collected_cents"`   // paid entries only
	ProjectedCents  int64          `json:"projected_cents"`   // every slot sold
	ProgressPercent float64        `json:"progress_percent"`
	UniqueBuyers    int            `json:"unique_buyers"`
	TicketsPerBuyer float64        `json:"tickets_per_buyer"`
	Daily           []DailySales   `json:"daily"`
	Weekdays        []WeekdaySales `json:"weekdays"`
	TopBuyers       []Buyer        `json:"top_buyers"`
}

const topBuyersLimit = 5

// ComputeStats builds the dashboard from entries.  It is a pure function
// of its inputs.
func ComputeStats(entries []model.Entry, totalSlots int, priceCents int64) Stats {
	st := Stats{
		TotalSlots:     totalSlots,
		TotalEntries:   len(entries),
		PriceCents:     priceCents,
		ProjectedCents: int64(totalSlots) * priceCents,
	}

	daily := map[string]int{}
	weekdays := make([]int, 7)
	buyers := map[string]*Buyer{}
	var order []string // first-seen order keeps ranking ties stable

	for _, e := range entries {
		if e.Paid {
			st.PaidEntries++
		}
		day := e.CreatedAt.UTC().Format(time.DateOnly)
		daily[day]++
		weekdays[e.CreatedAt.UTC().Weekday()]++

		b, ok := buyers[e.ContactNumber]
		if !ok {
			b = &Buyer{Name: e.Name, ContactNumber: e.ContactNumber}
			if b.Name == "" {
				b.Name = e.ContactNumber
			}
			buyers[e.ContactNumber] = b
			order = append(order, e.ContactNumber)
		}
		b.Tickets++
	}

	st.UnpaidEntries = st.TotalEntries - st.PaidEntries
	st.FreeSlots = totalSlots - st.TotalEntries
	if st.FreeSlots < 0 {
		st.FreeSlots = 0
	}
	st.GrossCents = int64(st.TotalEntries) * priceCents
	st.CollectedCents = int64(st.PaidEntries) * priceCents
	if st.ProjectedCents > 0 {
		st.ProgressPercent = round2(float64(st.GrossCents) / float64(st.ProjectedCents) * 100)
	}
	st.UniqueBuyers = len(buyers)
	if st.UniqueBuyers > 0 {
		st.TicketsPerBuyer = round2(float64(st.TotalEntries) / float64(st.UniqueBuyers))
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days) // ISO dates sort chronologically
	var cumulative int64
	st.Daily = make([]DailySales, 0, len(days))
	for _, d := range days {
		amount := int64(daily[d]) * priceCents
		cumulative += amount
		st.Daily = append(st.Daily, DailySales{Date: d, Tickets: daily[d], AmountCents: amount, CumulativeCents: cumulative})
	}

	st.Weekdays = make([]WeekdaySales, 7)
	for i := range weekdays {
		st.Weekdays[i] = WeekdaySales{Weekday: time.Weekday(i).String(), Tickets: weekdays[i]}
	}

	ranked := make([]Buyer, 0, len(order))
	for _, c := range order {
		ranked = append(ranked, *buyers[c])
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Tickets > ranked[j].Tickets })
	if len(ranked) > topBuyersLimit {
		ranked = ranked[:topBuyersLimit]
	}
	st.TopBuyers = ranked
	return st
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
