// internal/tui/model.go
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kanistore/storefront/internal/appstate"
	"github.com/kanistore/storefront/internal/browser"
	"github.com/kanistore/storefront/internal/client"
)

// loadedMsg reports that a browser transition finished.
type loadedMsg struct {
	kind string
	err  error
}

type searchDoneMsg struct {
	err error
}

type searchTickMsg struct {
	seq   int
	query string
}

// stateMsg carries an application state snapshot published by the store.
type stateMsg struct {
	state appstate.State
}

// imagesMsg reports that the images on the page were checked.
type imagesMsg struct{}

// Model is the storefront terminal UI.
type Model struct {
	ctx      context.Context
	browser  *browser.Browser
	search   *browser.SearchOverlay
	store    appstate.Store
	debounce time.Duration

	input        textinput.Model
	searching    bool
	searchSeq    int
	searchCursor int

	cursors map[browser.Phase]int
	loading bool
	state   appstate.State

	width  int
	height int
	styles Styles
}

func New(ctx context.Context, b *browser.Browser, s *browser.SearchOverlay, store appstate.Store, debounce time.Duration) Model {
	input := textinput.New()
	input.Placeholder = "Search products..."
	input.Prompt = "/ "
	input.CharLimit = 100
	input.Width = 40
	input.Cursor.SetMode(cursor.CursorStatic)

	var state appstate.State
	if store != nil {
		state = store.Get()
	}

	return Model{
		ctx:       ctx,
		browser:   b,
		search:    s,
		store:     store,
		debounce:  debounce,
		input:     input,
		cursors:   make(map[browser.Phase]int),
		loading:   true,
		state:     state,
		styles:    DefaultStyles(),
	}
}

// Attach subscribes to the application state and delivers every snapshot
// to send as a message. Pass the running program's Send. The returned func
// ends the subscription.
func (m Model) Attach(send func(tea.Msg)) (detach func()) {
	if m.store == nil {
		return func() {}
	}
	return m.store.Subscribe(func(state appstate.State) {
		send(stateMsg{state: state})
	})
}

func (m Model) Init() tea.Cmd {
	return m.run("categories", m.browser.LoadCategories)
}

func (m Model) run(kind string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{kind: kind, err: fn(ctx)}
	}
}

func (m Model) verifyImages() tea.Cmd {
	ctx := m.ctx
	b := m.browser
	return func() tea.Msg {
		b.VerifyImages(ctx)
		return imagesMsg{}
	}
}

func (m Model) runSearch(query string) tea.Cmd {
	ctx := m.ctx
	search := m.search
	return func() tea.Msg {
		return searchDoneMsg{err: search.SetQuery(ctx, query)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err == nil && msg.kind != "categories" {
			m.cursors[m.browser.View().Phase] = 0
			return m, m.verifyImages()
		}
		return m, nil

	case imagesMsg:
		return m, nil

	case searchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		return m, m.runSearch(msg.query)

	case searchDoneMsg:
		if msg.err == nil {
			m.searchCursor = 0
		}
		return m, nil

	case stateMsg:
		if msg.state.Version >= m.state.Version {
			m.state = msg.state
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.search.View().Results

	switch msg.String() {
	case "esc":
		m.closeSearch()
		return m, nil
	case "up":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil
	case "down":
		if m.searchCursor < len(results)-1 {
			m.searchCursor++
		}
		return m, nil
	case "enter":
		if m.searchCursor >= len(results) {
			return m, nil
		}
		id := results[m.searchCursor].ID
		m.closeSearch()
		m.loading = true
		return m, m.run("product", func(ctx context.Context) error {
			return m.browser.OpenProduct(ctx, id)
		})
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	if value == before {
		return m, cmd
	}

	m.searchSeq++
	if m.debounce <= 0 {
		return m, tea.Batch(cmd, m.runSearch(value))
	}
	seq := m.searchSeq
	return m, tea.Batch(cmd, tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, query: value}
	}))
}

func (m *Model) closeSearch() {
	m.searching = false
	m.searchSeq++
	m.searchCursor = 0
	m.input.Blur()
	m.input.SetValue("")
	m.search.Clear()
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.browser.View()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		m.move(view, -m.rowStep(view))
	case "down", "j":
		m.move(view, m.rowStep(view))
	case "left", "h":
		if view.Phase == browser.ProductsLoaded {
			m.move(view, -1)
		}
	case "right", "l":
		if view.Phase == browser.ProductsLoaded {
			m.move(view, 1)
		}
	case "esc", "backspace":
		m.browser.Back()
	case "x":
		if len(view.Notifications) > 0 {
			m.browser.Dismiss(view.Notifications[0].ID)
		}
	case "[", "]":
		if p, ok := m.currentProduct(view); ok {
			m.cycleQuantity(p, msg.String() == "]")
		}
	case "n":
		if view.Detail != nil {
			m.nextImage(view.Detail)
		}
	case "a":
		if p, ok := m.currentProduct(view); ok {
			return m, m.addToCart(p.ID)
		}
	case "enter":
		return m.enter(view)
	}

	return m, nil
}

func (m Model) enter(view browser.View) (tea.Model, tea.Cmd) {
	cursor := m.cursors[view.Phase]

	switch view.Phase {
	case browser.CategoriesLoaded:
		if cursor < len(view.Categories) {
			name := view.Categories[cursor].Name
			m.loading = true
			return m, m.run("subcategories", func(ctx context.Context) error {
				return m.browser.SelectCategory(ctx, name)
			})
		}
	case browser.SubcategoriesLoaded:
		if cursor < len(view.Subcategories) {
			sub := view.Subcategories[cursor]
			m.loading = true
			return m, m.run("products", func(ctx context.Context) error {
				return m.browser.SelectSubcategory(ctx, sub)
			})
		}
	case browser.ProductsLoaded:
		if cursor < len(view.Products) {
			id := view.Products[cursor].ID
			m.loading = true
			return m, m.run("product", func(ctx context.Context) error {
				return m.browser.OpenProduct(ctx, id)
			})
		}
	case browser.ProductOpened:
		if view.Detail != nil && cursor < len(view.Detail.Related) {
			id := view.Detail.Related[cursor].ID
			m.loading = true
			return m, m.run("product", func(ctx context.Context) error {
				return m.browser.OpenProduct(ctx, id)
			})
		}
	}
	return m, nil
}

func (m Model) addToCart(productID string) tea.Cmd {
	b := m.browser
	return func() tea.Msg {
		b.AddToCart(productID)
		return nil
	}
}

func (m *Model) cycleQuantity(p client.Product, forward bool) {
	labels := m.browser.QuantityLabels(p.ID)
	if len(labels) < 2 {
		return
	}
	price, _ := m.browser.Price(p.ID)
	idx := 0
	for i, l := range labels {
		if l == price.Label {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(labels)
	} else {
		idx = (idx - 1 + len(labels)) % len(labels)
	}
	_ = m.browser.SelectQuantity(p.ID, labels[idx])
}

func (m *Model) nextImage(detail *browser.ProductDetail) {
	images := detail.Product.ProductImage
	if len(images) < 2 {
		return
	}
	idx := 0
	for i, img := range images {
		if img == detail.ActiveImage {
			idx = i
			break
		}
	}
	_ = m.browser.SetActiveImage(images[(idx+1)%len(images)])
}

func (m *Model) move(view browser.View, delta int) {
	n := m.itemCount(view)
	if n == 0 {
		return
	}
	cursor := m.cursors[view.Phase] + delta
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= n {
		cursor = n - 1
	}
	m.cursors[view.Phase] = cursor
}

func (m Model) rowStep(view browser.View) int {
	if view.Phase == browser.ProductsLoaded {
		return m.browser.Options().GridColumns
	}
	return 1
}

func (m Model) itemCount(view browser.View) int {
	switch view.Phase {
	case browser.CategoriesLoaded:
		return len(view.Categories)
	case browser.SubcategoriesLoaded:
		return len(view.Subcategories)
	case browser.ProductsLoaded:
		return len(view.Products)
	case browser.ProductOpened:
		if view.Detail != nil {
			return len(view.Detail.Related)
		}
	}
	return 0
}

func (m Model) currentProduct(view browser.View) (client.Product, bool) {
	switch view.Phase {
	case browser.ProductsLoaded:
		if c := m.cursors[view.Phase]; c < len(view.Products) {
			return view.Products[c], true
		}
	case browser.ProductOpened:
		if view.Detail != nil {
			return view.Detail.Product, true
		}
	}
	return client.Product{}, false
}

func (m Model) View() string {
	view := m.browser.View()

	var sections []string
	sections = append(sections, m.header())

	for _, n := range view.Notifications {
		sections = append(sections, m.styles.Notification.Render("! "+n.Message+"  (x to dismiss)"))
	}

	switch {
	case m.searching:
		sections = append(sections, m.searchView())
	case m.loading && view.Phase == browser.Idle:
		sections = append(sections, m.styles.Muted.Render("Loading catalog..."))
	default:
		sections = append(sections, m.pageView(view))
	}

	sections = append(sections, m.footer(view))
	return strings.Join(sections, "\n\n")
}

func (m Model) header() string {
	title := m.styles.Header.Render("Kani Store")
	cart := m.styles.Muted.Render(fmt.Sprintf("Cart: %d", m.state.CartCount))
	if m.state.User == nil {
		return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", cart)
	}
	user := m.styles.Muted.Render("Signed in as " + m.state.User.Name)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", cart, "  ", user)
}

func (m Model) footer(view browser.View) string {
	help := "↑/↓ move • enter open • esc back • / search • q quit"
	switch {
	case m.searching:
		help = "type to search • ↑/↓ move • enter open • esc close"
	case view.Phase == browser.ProductsLoaded || view.Phase == browser.ProductOpened:
		help = "arrows move • enter open • [ ] quantity • a add to cart • n next image • esc back • / search"
	}
	return m.styles.Footer.Render(help)
}

func (m Model) searchView() string {
	sv := m.search.View()
	lines := []string{m.input.View()}

	if sv.Notification != "" {
		lines = append(lines, m.styles.Notification.Render("! "+sv.Notification))
	}
	if sv.Empty() {
		lines = append(lines, m.styles.Muted.Render(sv.Text()))
		return strings.Join(lines, "\n")
	}
	for i, p := range sv.Results {
		lines = append(lines, m.listItem(i == m.searchCursor, fmt.Sprintf("%s  %s", p.ProductName, m.priceText(browser.PriceOf(p, "")))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) pageView(view browser.View) string {
	cursor := m.cursors[view.Phase]

	switch view.Phase {
	case browser.CategoriesLoaded:
		lines := []string{m.styles.Title.Render("Categories")}
		for i, c := range view.Categories {
			lines = append(lines, m.listItem(i == cursor, c.Name))
		}
		return strings.Join(lines, "\n")

	case browser.SubcategoriesLoaded:
		lines := []string{m.styles.Title.Render(view.SelectedCategory)}
		if len(view.Subcategories) == 0 {
			lines = append(lines, m.styles.Muted.Render("No subcategories"))
		}
		for i, s := range view.Subcategories {
			image := m.styles.Muted.Render(m.browser.SubcategoryImage(s))
			lines = append(lines, m.listItem(i == cursor, s.Name+"  "+image))
		}
		return strings.Join(lines, "\n")

	case browser.ProductsLoaded:
		title := ""
		if view.SelectedSubcategory != nil {
			title = view.SelectedSubcategory.Name
		}
		if view.NoProducts {
			return m.styles.Title.Render(title) + "\n" + m.styles.Muted.Render("No products available")
		}
		return m.styles.Title.Render(title) + "\n" + m.grid(view.Products, cursor)

	case browser.ProductOpened:
		if view.Detail != nil {
			return m.detailView(view.Detail, cursor)
		}
	}

	return m.styles.Muted.Render("No categories")
}

func (m Model) grid(products []client.Product, cursor int) string {
	cols := m.browser.Options().GridColumns
	if cols < 1 {
		cols = 1
	}

	var rows []string
	for start := 0; start < len(products); start += cols {
		end := start + cols
		if end > len(products) {
			end = len(products)
		}
		tiles := make([]string, 0, cols)
		for i := start; i < end; i++ {
			tiles = append(tiles, m.tile(products[i], i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) tile(p client.Product, active bool) string {
	price, _ := m.browser.Price(p.ID)
	lines := []string{
		m.styles.Title.Render(p.ProductName),
		m.styles.Muted.Render(m.browser.ImageFor(p)),
		m.priceText(price),
	}
	if options := m.optionsText(p.ID, price.Label); options != "" {
		lines = append(lines, options)
	}

	style := m.styles.Tile
	if active {
		style = m.styles.ActiveTile
	}
	return style.Width(m.tileWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) tileWidth() int {
	cols := m.browser.Options().GridColumns
	if m.width <= 0 || cols < 1 {
		return 24
	}
	if w := m.width/cols - 2; w > 18 {
		return w
	}
	return 18
}

func (m Model) priceText(price browser.PriceDisplay) string {
	text := m.styles.Price.Render(browser.FormatPrice(price.Current))
	if price.HasStruck() {
		text += " " + m.styles.Struck.Render(browser.FormatPrice(price.Struck.Decimal))
	}
	return text
}

func (m Model) optionsText(productID, selected string) string {
	labels := m.browser.QuantityLabels(productID)
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == selected {
			parts = append(parts, m.styles.ActiveOption.Render("["+l+"]"))
		} else {
			parts = append(parts, m.styles.Option.Render(l))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) detailView(detail *browser.ProductDetail, cursor int) string {
	p := detail.Product
	price, _ := m.browser.Price(p.ID)

	lines := []string{m.styles.Title.Render(p.ProductName)}
	if p.BrandName != "" {
		lines = append(lines, m.styles.Muted.Render(p.BrandName))
	}
	lines = append(lines, m.priceText(price))
	if options := m.optionsText(p.ID, price.Label); options != "" {
		lines = append(lines, options)
	}
	lines = append(lines, m.styles.Muted.Render("Image: "+m.browser.Images().Source(detail.ActiveImage)))
	if desc := browser.DescriptionText(p.Description); desc != "" {
		lines = append(lines, "", desc)
	}

	lines = append(lines, "", m.styles.Title.Render("Related products"))
	if len(detail.Related) == 0 {
		lines = append(lines, m.styles.Muted.Render("None"))
	}
	for i, r := range detail.Related {
		rp := browser.PriceOf(r, "")
		lines = append(lines, m.listItem(i == cursor, r.ProductName+"  "+m.priceText(rp)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) listItem(selected bool, text string) string {
	if selected {
		return m.styles.Selected.Render("> " + text)
	}
	return "  " + text
}
