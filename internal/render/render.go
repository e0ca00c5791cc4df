// Package render prints list pages, records and the dashboard as terminal
// tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/oarkflow/mebel/internal/catalog"
	"github.com/oarkflow/mebel/internal/dashboard"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/result"
)

var (
	accent      = lipgloss.Color("#FF6B2C")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle  = lipgloss.NewStyle().Bold(true)

	statusStyles = map[gateway.Status]lipgloss.Style{
		gateway.StatusActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		gateway.StatusLowStock: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		gateway.StatusInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

const dateLayout = "02 Jan 2006"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Status renders a colored status label.
func Status(s gateway.Status) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// Footer describes the current page of a list.
func Footer(p result.Pagination) string {
	if p.TotalItems == 0 {
		return mutedStyle.Render("Tidak ada data")
	}
	pages := max(p.TotalPages, 1)
	return mutedStyle.Render(fmt.Sprintf("Halaman %d dari %d (%d item)", p.CurrentPage, pages, p.TotalItems))
}

// QueryLine summarizes the active search, filters and sort.
func QueryLine(q listquery.Query) string {
	parts := []string{fmt.Sprintf("urut: %s %s", q.SortField, q.SortOrder)}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("cari: %q", q.Search))
	}
	for k, v := range q.Filters {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return mutedStyle.Render(strings.Join(parts, " | "))
}

// Products prints one page of products.
func Products(w io.Writer, page result.Page[gateway.Product]) {
	t := newTable("ID", "Nama", "Kategori", "Stok", "Harga", "Status", "Diperbarui")
	for _, p := range page.Records {
		t.Row(
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Category,
			strconv.FormatInt(p.Stock, 10),
			FormatRupiah(p.Price),
			Status(p.Status),
			date(p.UpdatedAt),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, Footer(page.Pagination))
}

// Users prints one page of users.
func Users(w io.Writer, page result.Page[gateway.User]) {
	t := newTable("ID", "Nama", "Email", "Telepon", "Role", "Status")
	for _, u := range page.Records {
		t.Row(
			strconv.FormatInt(u.ID, 10),
			u.Name,
			u.Email,
			u.Phone,
			u.Role,
			Status(u.Status),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, Footer(page.Pagination))
}

// Product prints a single product as key/value rows.
func Product(w io.Writer, p gateway.Product) {
	fmt.Fprintln(w, titleStyle.Render(p.Name))
	t := newTable("Field", "Nilai").
		Row("ID", strconv.FormatInt(p.ID, 10)).
		Row("Kategori", p.Category).
		Row("Deskripsi", orDash(p.Description)).
		Row("Satuan", orDash(p.Unit)).
		Row("Stok", strconv.FormatInt(p.Stock, 10)).
		Row("Batas stok", strconv.FormatInt(p.LowStockThreshold, 10)).
		Row("Harga", FormatRupiah(p.Price)).
		Row("Diskon", fmt.Sprintf("%d%%", p.Discount)).
		Row("Status", Status(p.Status)).
		Row("Gambar", p.Image).
		Row("Diperbarui", date(p.UpdatedAt))
	fmt.Fprintln(w, t.Render())
}

// User prints a single user as key/value rows.
func User(w io.Writer, u gateway.User) {
	fmt.Fprintln(w, titleStyle.Render(u.Name))
	t := newTable("Field", "Nilai").
		Row("ID", strconv.FormatInt(u.ID, 10)).
		Row("Email", u.Email).
		Row("Telepon", orDash(u.Phone)).
		Row("Role", u.Role).
		Row("Status", Status(u.Status)).
		Row("Avatar", u.Avatar).
		Row("Dibuat", date(u.CreatedAt))
	fmt.Fprintln(w, t.Render())
}

// Catalog prints product cards as a table.
func Catalog(w io.Writer, items []catalog.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Produk tidak ditemukan"))
		return
	}
	t := newTable("ID", "Produk", "Harga", "Rating", "Terjual")
	for _, it := range items {
		price := FormatRupiah(it.Price)
		if it.Discounted() {
			price = fmt.Sprintf("%s %s -%d%%", price, mutedStyle.Strikethrough(true).Render(FormatRupiah(it.OriginalPrice)), it.Discount)
		}
		t.Row(
			strconv.FormatInt(it.ID, 10),
			it.Name,
			price,
			fmt.Sprintf("%.1f", it.Rating),
			strconv.FormatInt(it.TotalReviews, 10),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d produk", len(items))))
}

// Detail prints a catalog detail page.
func Detail(w io.Writer, d catalog.Detail) {
	fmt.Fprintln(w, titleStyle.Render(d.Name))
	t := newTable("Field", "Nilai").
		Row("Kategori", d.Category).
		Row("Harga", FormatRupiah(d.Price)).
		Row("Harga asli", FormatRupiah(d.OriginalPrice)).
		Row("Rating", fmt.Sprintf("%.1f (%d terjual)", d.Rating, d.TotalReviews)).
		Row("Stok", fmt.Sprintf("%d %s", d.Stock, d.Unit)).
		Row("Status", Status(d.Status)).
		Row("Deskripsi", orDash(d.Description)).
		Row("Gambar", strings.Join(d.Images, "\n"))
	fmt.Fprintln(w, t.Render())
}

// Dashboard prints the summary tiles; failed tiles show their message.
func Dashboard(w io.Writer, s dashboard.Summary) {
	t := newTable("Ringkasan", "Jumlah")
	for _, tile := range s.Tiles {
		value := strconv.Itoa(tile.Count)
		if !tile.OK() {
			value = errorStyle.Render(tile.Err)
		}
		t.Row(tile.Label, value)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render("Diperbarui "+s.GeneratedAt.Local().Format("15:04:05")))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
