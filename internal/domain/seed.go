package domain

// defaultTotalShares is the issued share count for every seeded instrument.
const defaultTotalShares = 1_000_000

// SeedInstruments returns the fictional twelve-company universe the market
// opens with: three companies in each of four sectors, with opening prices
// spread over two orders of magnitude so ladder offsets and news impacts
// behave differently per instrument.
func SeedInstruments() []*Instrument {
	return []*Instrument{
		// Electronics
		{ID: "SS011", Name: "Samsong Electronics", Sector: "electronics", ReferencePrice: 72000, TotalShares: defaultTotalShares},
		{ID: "JW004", Name: "Jaywave Systems", Sector: "electronics", ReferencePrice: 12000, TotalShares: defaultTotalShares},
		{ID: "AT010", Name: "Apex Robotics", Sector: "electronics", ReferencePrice: 55000, TotalShares: defaultTotalShares},

		// Software
		{ID: "MH012", Name: "Microhard", Sector: "software", ReferencePrice: 350000, TotalShares: defaultTotalShares},
		{ID: "SH001", Name: "Soho Cloud", Sector: "software", ReferencePrice: 15000, TotalShares: defaultTotalShares},
		{ID: "ND008", Name: "Nextdata Centers", Sector: "software", ReferencePrice: 27500, TotalShares: defaultTotalShares},

		// Biotech
		{ID: "JH005", Name: "Geneho Labs", Sector: "biotech", ReferencePrice: 45000, TotalShares: defaultTotalShares},
		{ID: "SE002", Name: "Sangen Diagnostics", Sector: "biotech", ReferencePrice: 22000, TotalShares: defaultTotalShares},
		{ID: "IA009", Name: "Insight Analytics", Sector: "biotech", ReferencePrice: 19500, TotalShares: defaultTotalShares},

		// Finance
		{ID: "YJ003", Name: "Yeji Capital", Sector: "finance", ReferencePrice: 8500, TotalShares: defaultTotalShares},
		{ID: "SW006", Name: "Sunwoo Solutions", Sector: "finance", ReferencePrice: 18000, TotalShares: defaultTotalShares},
		{ID: "QD007", Name: "Quantum Digital", Sector: "finance", ReferencePrice: 32000, TotalShares: defaultTotalShares},
	}
}
