package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// Label devolve a chave do período em que t cai; as chaves ordenam cronologicamente.
func (g GroupBy) Label(t time.Time) string {
	switch g {
	case GroupByWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SeriesPoint struct {
	Period string          `json:"period"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type ProductRank struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type CustomerRank struct {
	CustomerID uint            `json:"customer_id"`
	Name       string          `json:"name"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
}

type StatusTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type Dashboard struct {
	Customers           int64                `json:"customers"`
	Products            int64                `json:"products"`
	Sales               int64                `json:"sales"`
	SalesThisMonth      int                  `json:"sales_this_month"`
	PendingInstallments int                  `json:"pending_installments"`
	OverdueInstallments int                  `json:"overdue_installments"`
	MonthlyRevenue      decimal.Decimal      `json:"monthly_revenue"`
	LastMonthRevenue    decimal.Decimal      `json:"last_month_revenue"`
	Growth              decimal.Decimal      `json:"growth"`
	Last7Days           []SeriesPoint        `json:"last_7_days"`
	TopProducts         []ProductRank        `json:"top_products"`
	RecentSales         []domain.Sale        `json:"recent_sales"`
	Upcoming            []domain.Installment `json:"upcoming_installments"`
	LowStock            []domain.Product     `json:"low_stock"`
}

type SalesReport struct {
	Period        Period                            `json:"period"`
	GroupBy       GroupBy                           `json:"group_by"`
	Total         decimal.Decimal                   `json:"total"`
	Count         int                               `json:"count"`
	AverageTicket decimal.Decimal                   `json:"average_ticket"`
	Series        []SeriesPoint                     `json:"series"`
	TopProducts   []ProductRank                     `json:"top_products"`
	TopCustomers  []CustomerRank                    `json:"top_customers"`
	ByStatus      map[domain.SaleStatus]StatusTotal `json:"by_status"`
	Sales         []domain.Sale                     `json:"-"`
}

type CashFlowPoint struct {
	Month    string          `json:"month"`
	Received decimal.Decimal `json:"received"`
	Expected decimal.Decimal `json:"expected"`
}

type FinancialReport struct {
	Period        Period               `json:"period"`
	Received      decimal.Decimal      `json:"received"`
	ReceivedCount int                  `json:"received_count"`
	Pending       decimal.Decimal      `json:"pending"`
	PendingCount  int                  `json:"pending_count"`
	Overdue       decimal.Decimal      `json:"overdue"`
	OverdueCount  int                  `json:"overdue_count"`
	CashFlow      []CashFlowPoint      `json:"cash_flow"`
	Upcoming      []domain.Installment `json:"upcoming_installments"`
}

type CategoryStock struct {
	Category string          `json:"category"`
	Products int             `json:"products"`
	Stock    int             `json:"stock"`
	Value    decimal.Decimal `json:"value"`
}

type InventoryReport struct {
	LowStock   []domain.Product `json:"low_stock"`
	TopSelling []ProductRank    `json:"top_selling"`
	NoMovement []domain.Product `json:"no_movement"`
	StockValue decimal.Decimal  `json:"stock_value"`
	ByCategory []CategoryStock  `json:"by_category"`
}

type ReportUC struct {
	Reports  domain.ReportRepo
	Clock    domain.Clock
	LowStock int
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// period completa datas ausentes com o mês corrente.
func (uc *ReportUC) period(from, to *time.Time) (Period, error) {
	start, end := monthBounds(domain.DateOnly(uc.Clock.Now()))
	if from != nil {
		start = domain.DateOnly(*from)
	}
	if to != nil {
		end = domain.DateOnly(*to)
	}
	if end.Before(start) {
		return Period{}, domain.NewValidationError("end_date", domain.ErrInvalidPeriod)
	}
	return Period{Start: start, End: end}, nil
}

func active(sales []domain.Sale) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, s := range sales {
		if s.Status != domain.SaleStatusCancelled {
			out = append(out, s)
		}
	}
	return out
}

func revenue(sales []domain.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.FinalValue)
	}
	return sum
}

func rankProducts(sales []domain.Sale, limit int) []ProductRank {
	idx := map[uint]int{}
	var out []ProductRank
	for _, s := range sales {
		for _, it := range s.Items {
			i, ok := idx[it.ProductID]
			if !ok {
				name := ""
				if it.Product != nil {
					name = it.Product.Name
				}
				out = append(out, ProductRank{ProductID: it.ProductID, Name: name, Revenue: decimal.Zero})
				i = len(out) - 1
				idx[it.ProductID] = i
			}
			out[i].Quantity += it.Quantity
			out[i].Revenue = out[i].Revenue.Add(it.Subtotal)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Quantity > out[b].Quantity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rankCustomers(sales []domain.Sale, limit int) []CustomerRank {
	idx := map[uint]int{}
	var out []CustomerRank
	for _, s := range sales {
		i, ok := idx[s.CustomerID]
		if !ok {
			name := ""
			if s.Customer != nil {
				name = s.Customer.Name
			}
			out = append(out, CustomerRank{CustomerID: s.CustomerID, Name: name, Total: decimal.Zero})
			i = len(out) - 1
			idx[s.CustomerID] = i
		}
		out[i].Count++
		out[i].Total = out[i].Total.Add(s.FinalValue)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Total.GreaterThan(out[b].Total) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func series(sales []domain.Sale, g GroupBy) []SeriesPoint {
	idx := map[string]int{}
	var out []SeriesPoint
	for _, s := range sales {
		key := g.Label(s.SaleDate)
		i, ok := idx[key]
		if !ok {
			out = append(out, SeriesPoint{Period: key, Total: decimal.Zero})
			i = len(out) - 1
			idx[key] = i
		}
		out[i].Count++
		out[i].Total = out[i].Total.Add(s.FinalValue)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Period < out[b].Period })
	return out
}

func growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}

func lowStock(products []domain.Product, threshold int) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if p.Active && p.Stock <= threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Stock < out[b].Stock })
	return out
}

func (uc *ReportUC) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := domain.DateOnly(uc.Clock.Now())
	monthStart, monthEnd := monthBounds(today)
	prevStart, prevEnd := monthBounds(monthStart.AddDate(0, 0, -1))

	d := &Dashboard{}
	var err error
	if d.Customers, d.Products, d.Sales, err = uc.Reports.Counts(ctx); err != nil {
		return nil, err
	}
	month, err := uc.Reports.SalesInRange(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	month = active(month)
	prev, err := uc.Reports.SalesInRange(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}
	d.SalesThisMonth = len(month)
	d.MonthlyRevenue = revenue(month)
	d.LastMonthRevenue = revenue(active(prev))
	d.Growth = growth(d.MonthlyRevenue, d.LastMonthRevenue)
	d.TopProducts = rankProducts(month, 5)

	weekStart := today.AddDate(0, 0, -6)
	week, err := uc.Reports.SalesInRange(ctx, weekStart, today)
	if err != nil {
		return nil, err
	}
	byDay := map[string]SeriesPoint{}
	for _, p := range series(active(week), GroupByDay) {
		byDay[p.Period] = p
	}
	for day := weekStart; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := GroupByDay.Label(day)
		p, ok := byDay[key]
		if !ok {
			p = SeriesPoint{Period: key, Total: decimal.Zero}
		}
		d.Last7Days = append(d.Last7Days, p)
	}

	if d.RecentSales, err = uc.Reports.RecentSales(ctx, 5); err != nil {
		return nil, err
	}
	open, err := uc.Reports.OpenInstallments(ctx)
	if err != nil {
		return nil, err
	}
	horizon := today.AddDate(0, 0, 7)
	for _, inst := range open {
		if inst.IsOverdue(today) {
			d.OverdueInstallments++
			continue
		}
		d.PendingInstallments++
		if len(d.Upcoming) < 5 && !inst.DueDate.Before(today) && !inst.DueDate.After(horizon) {
			d.Upcoming = append(d.Upcoming, inst)
		}
	}
	products, err := uc.Reports.Products(ctx)
	if err != nil {
		return nil, err
	}
	d.LowStock = lowStock(products, uc.LowStock)
	return d, nil
}

// SalesReport agrega as vendas do período; canceladas só entram na contagem por status.
func (uc *ReportUC) SalesReport(ctx context.Context, from, to *time.Time, g GroupBy) (*SalesReport, error) {
	if g == "" {
		g = GroupByDay
	}
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth:
	default:
		return nil, domain.NewValidationError("group_by", domain.ErrInvalidGrouping)
	}
	p, err := uc.period(from, to)
	if err != nil {
		return nil, err
	}
	all, err := uc.Reports.SalesInRange(ctx, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	sales := active(all)
	r := &SalesReport{
		Period:        p,
		GroupBy:       g,
		Total:         revenue(sales),
		Count:         len(sales),
		AverageTicket: decimal.Zero,
		Series:        series(sales, g),
		TopProducts:   rankProducts(sales, 10),
		TopCustomers:  rankCustomers(sales, 10),
		ByStatus:      map[domain.SaleStatus]StatusTotal{},
		Sales:         all,
	}
	if r.Count > 0 {
		r.AverageTicket = r.Total.Div(decimal.NewFromInt(int64(r.Count))).Round(2)
	}
	for _, s := range all {
		st, ok := r.ByStatus[s.Status]
		if !ok {
			st.Total = decimal.Zero
		}
		st.Count++
		st.Total = st.Total.Add(s.FinalValue)
		r.ByStatus[s.Status] = st
	}
	return r, nil
}

func (uc *ReportUC) FinancialReport(ctx context.Context, from, to *time.Time) (*FinancialReport, error) {
	p, err := uc.period(from, to)
	if err != nil {
		return nil, err
	}
	today := domain.DateOnly(uc.Clock.Now())
	r := &FinancialReport{Period: p, Received: decimal.Zero, Pending: decimal.Zero, Overdue: decimal.Zero}

	flow := map[string]*CashFlowPoint{}
	point := func(t time.Time) *CashFlowPoint {
		key := GroupByMonth.Label(t)
		cp, ok := flow[key]
		if !ok {
			cp = &CashFlowPoint{Month: key, Received: decimal.Zero, Expected: decimal.Zero}
			flow[key] = cp
		}
		return cp
	}

	paid, err := uc.Reports.InstallmentsPaidInRange(ctx, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	for _, inst := range paid {
		r.Received = r.Received.Add(inst.Amount)
		r.ReceivedCount++
		if inst.PaymentDate != nil {
			cp := point(*inst.PaymentDate)
			cp.Received = cp.Received.Add(inst.Amount)
		}
	}
	due, err := uc.Reports.InstallmentsDueInRange(ctx, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	for _, inst := range due {
		if inst.Sale != nil && inst.Sale.Status == domain.SaleStatusCancelled {
			continue
		}
		cp := point(inst.DueDate)
		cp.Expected = cp.Expected.Add(inst.Amount)
		if inst.Status == domain.InstallmentStatusPending {
			r.Pending = r.Pending.Add(inst.Amount)
			r.PendingCount++
		}
	}
	open, err := uc.Reports.OpenInstallments(ctx)
	if err != nil {
		return nil, err
	}
	horizon := today.AddDate(0, 0, 30)
	for _, inst := range open {
		if inst.Sale != nil && inst.Sale.Status == domain.SaleStatusCancelled {
			continue
		}
		if inst.IsOverdue(today) {
			r.Overdue = r.Overdue.Add(inst.Amount)
			r.OverdueCount++
		} else if !inst.DueDate.After(horizon) {
			r.Upcoming = append(r.Upcoming, inst)
		}
	}
	for _, cp := range flow {
		r.CashFlow = append(r.CashFlow, *cp)
	}
	sort.Slice(r.CashFlow, func(a, b int) bool { return r.CashFlow[a].Month < r.CashFlow[b].Month })
	return r, nil
}

func (uc *ReportUC) InventoryReport(ctx context.Context) (*InventoryReport, error) {
	products, err := uc.Reports.Products(ctx)
	if err != nil {
		return nil, err
	}
	sold, err := uc.Reports.SoldQuantities(ctx)
	if err != nil {
		return nil, err
	}
	r := &InventoryReport{LowStock: lowStock(products, uc.LowStock), StockValue: decimal.Zero}
	cats := map[string]*CategoryStock{}
	for _, p := range products {
		value := p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
		r.StockValue = r.StockValue.Add(value)
		c, ok := cats[p.Category]
		if !ok {
			c = &CategoryStock{Category: p.Category, Value: decimal.Zero}
			cats[p.Category] = c
		}
		c.Products++
		c.Stock += p.Stock
		c.Value = c.Value.Add(value)

		qty := sold[p.ID]
		if qty == 0 {
			r.NoMovement = append(r.NoMovement, p)
			continue
		}
		r.TopSelling = append(r.TopSelling, ProductRank{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			Revenue:   p.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	sort.SliceStable(r.TopSelling, func(a, b int) bool { return r.TopSelling[a].Quantity > r.TopSelling[b].Quantity })
	if len(r.TopSelling) > 10 {
		r.TopSelling = r.TopSelling[:10]
	}
	for _, c := range cats {
		r.ByCategory = append(r.ByCategory, *c)
	}
	sort.Slice(r.ByCategory, func(a, b int) bool { return r.ByCategory[a].Category < r.ByCategory[b].Category })
	return r, nil
}
