// Package gateway provides the collection gateways behind the product and
// user list views. A gateway is either Live (HTTP against the furniture
// backend) or Mock (in-memory fixtures); both satisfy Gateway and every
// operation returns a result.Result on every path.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/result"
)

// Gateway lists and mutates one resource collection. R is the record shape
// shown to the user; F is the set of editable fields.
type Gateway[R, F any] interface {
	List(ctx context.Context, q listquery.Query) result.Result[result.Page[R]]
	Get(ctx context.Context, id int64) result.Result[R]
	Create(ctx context.Context, fields F) result.Result[R]
	Update(ctx context.Context, id int64, fields F) result.Result[R]
	UpdateStatus(ctx context.Context, id int64, status Status) result.Result[R]
	Delete(ctx context.Context, id int64) result.Result[struct{}]
}

// Status is the lifecycle state of a product or user.
type Status string

const (
	StatusActive   Status = "aktif"
	StatusLowStock Status = "menipis"
	StatusInactive Status = "nonaktif"
)

// ParseStatus accepts any known status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusLowStock, StatusInactive:
		return st, nil
	}
	return "", apierror.StatusError{Value: s}
}

// Toggleable reports whether s may be set through UpdateStatus.
func (s Status) Toggleable() bool {
	return s == StatusActive || s == StatusInactive
}

func (s Status) String() string { return string(s) }

// NumberInput is raw numeric input as typed by the user. Blank or invalid
// input counts as zero.
type NumberInput string

// Num wraps any value printed with %v.
func Num(v any) *NumberInput {
	n := NumberInput(fmt.Sprint(v))
	return &n
}

// Decimal returns the value, or zero when it does not parse.
func (n *NumberInput) Decimal() decimal.Decimal {
	if n == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(*n)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int returns the integer part of the value.
func (n *NumberInput) Int() int64 {
	return n.Decimal().IntPart()
}

// Float returns the value as float64.
func (n *NumberInput) Float() float64 {
	f, _ := n.Decimal().Float64()
	return f
}

// Text returns a pointer to s, for optional string fields.
func Text(s string) *string {
	return &s
}

// StatusPtr returns a pointer to s.
func StatusPtr(s Status) *Status {
	return &s
}

// Messages are the user-facing strings of one resource.
type Messages struct {
	NoTokenList     string
	NoTokenMutation string
	ListFailed      string
	GetFailed       string
	CreateFailed    string
	UpdateFailed    string
	StatusFailed    string
	DeleteFailed    string
	Created         string
	Updated         string
	StatusUpdated   string
	Deleted         string
	Entity          string
	// Unexpected leads the message when the backend cannot be reached.
	Unexpected string
}

// FilterParam maps a view filter onto a backend query parameter.
type FilterParam struct {
	Name     string
	Param    string
	Sentinel string
}

// View returns the listquery filter for this parameter.
func (f FilterParam) View() listquery.Filter {
	return listquery.Filter{Name: f.Name, Sentinel: f.Sentinel}
}

// Sentinels
const (
	AllCategories = "Semua Kategori"
	AllStatuses   = "Semua Status"
)

// Categories lists the furniture categories, sentinel first.
var Categories = []string{AllCategories, "Meja", "Tempat Tidur", "Lemari", "Kursi", "Rak", "Bufet", "Sofa", "Nakas"}

func numberJSON(d decimal.Decimal) any {
	return jsonNumber(d.String())
}
