package domain

// PriceSummary identifies the most expensive record.
type PriceSummary struct {
	ID         string  `json:"id"`
	ArtistName string  `json:"artistName"`
	AlbumName  string  `json:"albumName"`
	Price      float64 `json:"price"`
}

// Stats aggregates a collection.
type Stats struct {
	TotalRecords  int            `json:"totalRecords"`
	TotalValue    float64        `json:"totalValue"`
	AveragePrice  float64        `json:"averagePrice"`
	ByStatus      map[string]int `json:"byStatus"`
	ByFormat      map[string]int `json:"byFormat"`
	ByGenre       map[string]int `json:"byGenre"`
	MostExpensive *PriceSummary  `json:"mostExpensive"`
}

// ComputeStats summarizes records. Records without a genre are counted as "Unknown".
func ComputeStats(records []Record) Stats {
	s := Stats{
		TotalRecords: len(records),
		ByStatus:     map[string]int{},
		ByFormat:     map[string]int{},
		ByGenre:      map[string]int{},
	}

	for _, r := range records {
		s.TotalValue += r.Price
		s.ByStatus[string(r.Status)]++
		s.ByFormat[string(r.Format)]++

		genre := r.Genre
		if genre == "" {
			genre = "Unknown"
		}
		s.ByGenre[genre]++

		if r.Price > 0 && (s.MostExpensive == nil || r.Price > s.MostExpensive.Price) {
			s.MostExpensive = &PriceSummary{
				ID:         r.ID,
				ArtistName: r.ArtistName,
				AlbumName:  r.AlbumName,
				Price:      r.Price,
			}
		}
	}

	s.TotalValue = RoundPrice(s.TotalValue)
	if s.TotalRecords > 0 {
		s.AveragePrice = RoundPrice(s.TotalValue / float64(s.TotalRecords))
	}
	return s
}
