package layout

// Tables is the placement of the data table columns and the info block.
type Tables struct {
	Columns []Rect `json:"columns"`
	// Side is the info block; zero-sized when it was dropped.
	Side    Rect    `json:"side"`
	HasSide bool    `json:"has_side"`
	Y       float64 `json:"y"`
	Height  float64 `json:"height"`
	// MinTop is the lowest Y the tables may start at without touching the image block.
	MinTop float64 `json:"min_top"`
}

// Bottom returns the Y of the bottom edge of the table group.
func (t Tables) Bottom() float64 { return t.Y + t.Height }

// PlaceTables positions columns equal-width data columns plus the side info
// block as a horizontally centered group, bottom-aligned above footerTop.
// When space is short the side block shrinks to MinSideInfoW and is then
// dropped; data columns never shrink.
func PlaceTables(cfg Config, columns, rows int, footerTop, minTop float64) Tables {
	if columns < 0 {
		columns = 0
	}
	if rows < 0 {
		rows = 0
	}
	avail := cfg.ContentWidth()
	dataW := float64(columns)*cfg.ColW + float64(max(columns-1, 0))*cfg.ColGap

	side := cfg.SideInfoW
	sideGap := 0.0
	if columns > 0 {
		sideGap = cfg.ColGap
	}
	if dataW+sideGap+side > avail {
		side = avail - dataW - sideGap
		if side < cfg.MinSideInfoW {
			side = 0
		}
	}

	groupW := dataW
	if side > 0 {
		groupW += sideGap + side
	}

	height := cfg.TitleRowH + float64(rows)*cfg.RowH
	t := Tables{
		Y:       footerTop - cfg.FooterGap - height,
		Height:  height,
		MinTop:  minTop,
		HasSide: side > 0,
	}

	x := cfg.ContentX() + (avail-groupW)/2
	for range columns {
		t.Columns = append(t.Columns, Rect{X: x, Y: t.Y, W: cfg.ColW, H: height})
		x += cfg.ColW + cfg.ColGap
	}
	if t.HasSide {
		t.Side = Rect{X: x, Y: t.Y, W: side, H: height}
	}
	return t
}

// GroupWidth returns the horizontal extent of the placed tables.
func (t Tables) GroupWidth() float64 {
	var left, right float64
	first := true
	extend := func(r Rect) {
		if first {
			left, right = r.X, r.Right()
			first = false
			return
		}
		left = min(left, r.X)
		right = max(right, r.Right())
	}
	for _, c := range t.Columns {
		extend(c)
	}
	if t.HasSide {
		extend(t.Side)
	}
	return right - left
}

// MinTablesTop returns the highest Y the tables may reach: below the frame,
// the height labels and a footer gap.
func MinTablesTop(cfg Config, l Layout) float64 {
	bottom := l.Frame.Bottom()
	for _, lb := range l.HeightLabels {
		bottom = max(bottom, lb.Box.Bottom())
	}
	return bottom + cfg.FooterGap
}

// FooterTop returns the Y of the top of a footer block of the given height.
func FooterTop(cfg Config, height float64) float64 {
	return cfg.PageH - cfg.Margin - height
}
