package market

// LiveAssetSummary is one aggregated row of a portfolio's summary table:
// the combined position for every lot sharing a grouping key.
type LiveAssetSummary struct {
	Symbol               string  `json:"symbol"`
	Name                 string  `json:"name"`
	TotalQuantity        float64 `json:"total_quantity"`
	TotalCost            float64 `json:"total_cost"`
	TotalValue           float64 `json:"total_value"`
	AveragePurchasePrice float64 `json:"average_purchase_price"`
	TotalProfit          float64 `json:"total_profit"`
}

// summaryKey is the grouping key for the summary table. Mergeable lots
// collapse by symbol; non-mergeable assets (real estate) stay 1:1 rows.
func summaryKey(a Asset) string {
	if a.IsMergeable() {
		return a.Symbol()
	}
	return a.Symbol() + "|" + a.ID()
}

// refreshSummaryFor recomputes exactly the one summary row affected by a
// mutation of asset a. The row is always rebuilt from the full live group
// membership rather than adjusted incrementally, so float drift can't
// accumulate; an empty group deletes its row. Callers must hold p.mu.
func (p *Portfolio) refreshSummaryFor(a Asset) {
	key := summaryKey(a)

	var members []Asset
	if a.IsMergeable() {
		for _, other := range p.assets {
			if other.IsMergeable() && other.Symbol() == a.Symbol() {
				members = append(members, other)
			}
		}
	} else {
		for _, other := range p.assets {
			if other.ID() == a.ID() {
				members = append(members, other)
			}
		}
	}

	if len(members) == 0 {
		delete(p.summaries, key)
		return
	}

	row := LiveAssetSummary{
		Symbol: members[0].Symbol(),
		Name:   members[0].Name(),
	}
	for _, m := range members {
		row.TotalQuantity += m.Quantity()
		row.TotalCost += m.PurchasePrice() * m.Quantity()
		row.TotalValue += m.Value()
	}
	if row.TotalQuantity > 0 {
		row.AveragePurchasePrice = row.TotalCost / row.TotalQuantity
	}
	row.TotalProfit = row.TotalValue - row.TotalCost

	p.summaries[key] = row
}
