package consolesvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// ErrUnknownFormat is returned for an unsupported --output value.
var ErrUnknownFormat = errors.New("unknown output format")

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ProductRow is a product with the actions the session may take on it.
type ProductRow struct {
	domain.Product `yaml:",inline"`

	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// OrderRow is an order with the transitions offered for it.
type OrderRow struct {
	domain.Order `yaml:",inline"`

	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// MenuEntry is one navigation link.
type MenuEntry struct {
	Label string        `json:"label"           yaml:"label"`
	Path  string        `json:"path"            yaml:"path"`
	Roles []domain.Role `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// SessionInfo describes the stored session without exposing the token.
type SessionInfo struct {
	LoggedIn bool        `json:"loggedIn"       yaml:"loggedIn"`
	Role     domain.Role `json:"role,omitempty" yaml:"role,omitempty"`
	Menu     []MenuEntry `json:"menu"           yaml:"menu"`
}

// Document is everything one command shows.
type Document struct {
	Route    string       `json:"route,omitempty"    yaml:"route,omitempty"`
	Notice   *Notice      `json:"notice,omitempty"   yaml:"notice,omitempty"`
	Session  *SessionInfo `json:"session,omitempty"  yaml:"session,omitempty"`
	Editing  *EditBuffer  `json:"editing,omitempty"  yaml:"editing,omitempty"`
	Product  *ProductRow  `json:"product,omitempty"  yaml:"product,omitempty"`
	Order    *OrderRow    `json:"order,omitempty"    yaml:"order,omitempty"`
	Products []ProductRow `json:"products,omitempty" yaml:"products,omitempty"`
	Orders   []OrderRow   `json:"orders,omitempty"   yaml:"orders,omitempty"`
}

// Renderer writes documents in one output format.
type Renderer struct {
	out    io.Writer
	format string
}

// NewRenderer creates a Renderer for format.
func NewRenderer(out io.Writer, format string) (*Renderer, error) {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
	case "":
		format = FormatText
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &Renderer{out: out, format: format}, nil
}

// Render writes doc.
func (r *Renderer) Render(doc Document) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("close yaml encoder: %w", err)
		}

		return nil
	default:
		return r.renderText(doc)
	}
}

func (r *Renderer) renderText(doc Document) error {
	var b strings.Builder

	if doc.Session != nil {
		writeSession(&b, *doc.Session)
	}

	if doc.Notice != nil {
		if doc.Notice.Message != "" {
			fmt.Fprintln(&b, doc.Notice.Message)
		}

		if doc.Notice.Error != "" {
			fmt.Fprintln(&b, doc.Notice.Error)
		}
	}

	if doc.Editing != nil {
		fmt.Fprintf(&b, "Editando %s: precio %s, descripción %q\n",
			doc.Editing.ProductID, doc.Editing.Price.String(), doc.Editing.Description)
	}

	if doc.Product != nil {
		writeProducts(&b, []ProductRow{*doc.Product})
	}

	if doc.Order != nil {
		writeOrders(&b, []OrderRow{*doc.Order})
	}

	if doc.Products != nil {
		writeProducts(&b, doc.Products)
	}

	if doc.Orders != nil {
		writeOrders(&b, doc.Orders)
	}

	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

func writeSession(b *strings.Builder, s SessionInfo) {
	switch {
	case !s.LoggedIn:
		fmt.Fprintln(b, "Sin sesión")
	case s.Role == domain.RoleNone:
		fmt.Fprintln(b, "Sesión iniciada sin rol")
	default:
		fmt.Fprintf(b, "Sesión iniciada como %s\n", s.Role)
	}

	for _, e := range s.Menu {
		fmt.Fprintf(b, "  %-14s %s\n", e.Label, e.Path)
	}
}

func writeProducts(b *strings.Builder, rows []ProductRow) {
	if len(rows) == 0 {
		fmt.Fprintln(b, "No hay productos.")

		return
	}

	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRECIO\tACTIVO\tTRADUCCIONES\tACCIONES")

	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.ID,
			row.Price.StringFixed(2),
			yesNo(row.IsActive),
			translationsText(row.Translations),
			strings.Join(row.Actions, ","),
		)
	}

	_ = tw.Flush()
}

func writeOrders(b *strings.Builder, rows []OrderRow) {
	if len(rows) == 0 {
		fmt.Fprintln(b, "No hay órdenes.")

		return
	}

	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tESTADO\tCANTIDAD\tTOTAL\tPRODUCTO\tDESCRIPCIÓN\tACCIONES")

	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			row.ID,
			row.Status,
			row.Quantity,
			row.Total.StringFixed(2),
			row.Product.ID,
			descriptionText(row.Product.Translations),
			strings.Join(row.Actions, ","),
		)
	}

	_ = tw.Flush()
}

// translationsText lists every translation of a product on one line.
func translationsText(ts domain.Translations) string {
	if len(ts) == 0 {
		return MsgNoDescription
	}

	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, fmt.Sprintf("Idioma: %s - Descripción: %s", t.Language, t.Description))
	}

	return strings.Join(parts, " | ")
}

func descriptionText(ts domain.Translations) string {
	if d := ts.Description(); d != "" {
		return d
	}

	return MsgNoDescription
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}

	return "no"
}
