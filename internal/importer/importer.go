// Package importer loads a legacy document-store export (JSON) into the
// database. The export holds the collections clients, products, materials
// and orders, each either as an object keyed by document id or as an array of
// documents with an "id" field. Field names are the legacy Portuguese ones.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/diewo77/go-printshop/internal/dates"
	"github.com/diewo77/go-printshop/internal/logger"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type doc map[string]any

// Result counts what an import created and skipped.
type Result struct {
	Materials int `json:"materials"`
	Products  int `json:"products"`
	Clients   int `json:"clients"`
	Orders    int `json:"orders"`
	Skipped   int `json:"skipped"`
}

type Importer struct {
	DB  *gorm.DB
	Log *zap.Logger
	Loc *time.Location
}

func New(db *gorm.DB, log *zap.Logger, loc *time.Location) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	return &Importer{DB: db, Log: logger.OrNop(log), Loc: loc}
}

// Import reads the export and writes it in one transaction. Records that
// already exist (same name, or for orders same client and date) are
// skipped, so importing the same file twice is harmless. Stock is taken as
// exported; orders do not move it.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	cols := map[string][]doc{}
	for _, name := range []string{"materials", "products", "clients", "orders"} {
		docs, err := collection(raw[name])
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", name, err)
		}
		cols[name] = docs
	}

	res := &Result{}
	err := im.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := &run{tx: tx, loc: im.Loc, res: res, log: im.Log,
			materials: map[string]uint{}, products: map[string]uint{}, productNames: map[string]uint{}, clients: map[string]uint{}}
		for _, step := range []struct {
			name string
			fn   func(doc) error
		}{
			{"materials", st.material},
			{"products", st.product},
			{"clients", st.client},
			{"orders", st.order},
		} {
			for _, d := range cols[step.name] {
				if err := step.fn(d); err != nil {
					return fmt.Errorf("%s %s: %w", step.name, str(d, "id"), err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	im.Log.Info("legacy export imported",
		zap.Int("materials", res.Materials), zap.Int("products", res.Products),
		zap.Int("clients", res.Clients), zap.Int("orders", res.Orders), zap.Int("skipped", res.Skipped))
	return res, nil
}

// collection accepts {"<id>": {...}} or [{"id": ...}], returning documents
// sorted by id so imports are deterministic.
func collection(b json.RawMessage) ([]doc, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var list []doc
	if err := unmarshalNumbers(b, &list); err == nil {
		return compact(list), nil
	}
	byID := map[string]doc{}
	if err := unmarshalNumbers(b, &byID); err != nil {
		return nil, err
	}
	out := make([]doc, 0, len(byID))
	for id, d := range byID {
		if d == nil {
			continue
		}
		if _, ok := d["id"]; !ok {
			d["id"] = id
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return str(out[i], "id") < str(out[j], "id") })
	return out, nil
}

func compact(list []doc) []doc {
	out := list[:0]
	for _, d := range list {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

func unmarshalNumbers(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

type run struct {
	tx  *gorm.DB
	loc *time.Location
	res *Result
	log *zap.Logger

	materials    map[string]uint // legacy id -> id
	products     map[string]uint
	productNames map[string]uint
	clients      map[string]uint
}

func (r *run) material(d doc) error {
	name := str(d, "nome", "name")
	if name == "" {
		r.res.Skipped++
		return nil
	}
	var m models.Material
	found, err := firstByName(r.tx, &m, name)
	if err != nil {
		return err
	}
	if !found {
		m = models.Material{
			Name:        name,
			Stock:       nonNegative(integer(d, "estoque", "stock")),
			Unit:        str(d, "unidade", "unit"),
			Category:    str(d, "categoria", "category"),
			Supplier:    str(d, "fornecedor", "supplier"),
			Description: str(d, "descricao", "description"),
		}
		if err := r.tx.Create(&m).Error; err != nil {
			return err
		}
		r.res.Materials++
	} else {
		r.res.Skipped++
	}
	r.materials[str(d, "id")] = m.ID
	return nil
}

func (r *run) product(d doc) error {
	name := str(d, "nome", "name")
	if name == "" {
		r.res.Skipped++
		return nil
	}
	var p models.Product
	found, err := firstByName(r.tx, &p, name)
	if err != nil {
		return err
	}
	if !found {
		p = models.Product{
			Name:        name,
			Price:       money(d, "preco", "price"),
			Stock:       nonNegative(integer(d, "estoque", "stock")),
			Category:    str(d, "categoria", "category"),
			Supplier:    str(d, "fornecedor", "supplier"),
			Description: str(d, "descricao", "description"),
		}
		if legacy, ok := r.materials[str(d, "materialId")]; ok {
			p.MaterialID = &legacy
			p.MaterialQuantity = nonNegative(integer(d, "quantidadeMaterial"))
		}
		if list, ok := d["materiais"].([]any); ok {
			for _, item := range list {
				md, ok := item.(map[string]any)
				if !ok {
					continue
				}
				id, ok := r.materials[str(md, "id", "materialId")]
				if !ok {
					r.log.Warn("product references unknown material",
						zap.String("product", name), zap.String("material", str(md, "id", "materialId")))
					continue
				}
				p.Materials = append(p.Materials, models.ProductMaterial{MaterialID: id, Quantity: nonNegative(integer(md, "quantidade", "quantity"))})
			}
		}
		if err := r.tx.Create(&p).Error; err != nil {
			return err
		}
		r.res.Products++
	} else {
		r.res.Skipped++
	}
	r.products[str(d, "id")] = p.ID
	if _, ok := r.productNames[p.Name]; !ok {
		r.productNames[p.Name] = p.ID
	}
	return nil
}

func (r *run) client(d doc) error {
	name := str(d, "name", "nome")
	if name == "" {
		r.res.Skipped++
		return nil
	}
	email := str(d, "email")
	var c models.Client
	err := r.tx.Where("name = ? AND email = ?", name, email).First(&c).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c = models.Client{
			Name:     name,
			Email:    email,
			Phone:    str(d, "phone", "telefone"),
			Address:  str(d, "address", "endereco"),
			Document: str(d, "document", "documento", "cpfCnpj"),
			Company:  str(d, "empresa", "company", "companyName"),
		}
		if err := r.tx.Create(&c).Error; err != nil {
			return err
		}
		r.res.Clients++
	case err != nil:
		return err
	default:
		r.res.Skipped++
	}
	r.clients[str(d, "id")] = c.ID
	return nil
}

func (r *run) order(d doc) error {
	clientID, ok := r.clients[str(d, "clientId")]
	if !ok {
		r.log.Warn("order references unknown client, skipped", zap.String("order", str(d, "id")))
		r.res.Skipped++
		return nil
	}
	when, ok := dates.ToTime(d["dataPedido"], r.loc)
	if !ok {
		if when, ok = dates.ToTime(d["createdAt"], r.loc); !ok {
			r.log.Warn("order without usable date, skipped", zap.String("order", str(d, "id")))
			r.res.Skipped++
			return nil
		}
	}
	when = when.UTC()

	var client models.Client
	if err := r.tx.First(&client, clientID).Error; err != nil {
		return err
	}
	var n int64
	if err := r.tx.Model(&models.Order{}).Where("client_id = ? AND order_date = ?", clientID, when).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		r.res.Skipped++
		return nil
	}

	status, err := models.ParseOrderStatus(str(d, "status"))
	if err != nil {
		status = models.OrderStatusPending
	}
	o := models.Order{
		ClientID:      clientID,
		ClientName:    firstNonEmpty(str(d, "clientName"), client.Name),
		ClientEmail:   firstNonEmpty(str(d, "clientEmail"), client.Email),
		ClientCompany: firstNonEmpty(str(d, "clientCompany"), client.Company),
		Status:        status,
		OrderDate:     when,
		Discount:      money(d, "desconto", "discount"),
		Notes:         str(d, "observacoes", "notes"),
	}
	items, _ := d["items"].([]any)
	for i, raw := range items {
		it, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		line := models.OrderItem{
			Position:    i,
			ProductName: str(it, "produto", "productName"),
			Quantity:    integer(it, "quantidade", "quantity"),
			UnitPrice:   money(it, "precoUnitario", "unitPrice"),
		}
		if id, ok := r.products[str(it, "productId")]; ok {
			line.ProductID = &id
		} else if id, ok := r.productNames[line.ProductName]; ok {
			line.ProductID = &id
		}
		o.Items = append(o.Items, line)
	}
	if err := r.tx.Create(&o).Error; err != nil {
		return err
	}
	r.res.Orders++
	return nil
}

func firstByName(tx *gorm.DB, dst any, name string) (bool, error) {
	err := tx.Where("name = ?", name).Order("id asc").First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// str returns the first non-empty string form of the given keys.
func str(d map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := d[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func number(d map[string]any, keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		switch v := d[k].(type) {
		case json.Number:
			if n, err := decimal.NewFromString(v.String()); err == nil {
				return n, true
			}
		case string:
			s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "R$"))
			s = strings.Replace(s, ",", ".", 1)
			if n, err := decimal.NewFromString(s); err == nil {
				return n, true
			}
		case float64:
			return decimal.NewFromFloat(v), true
		}
	}
	return decimal.Zero, false
}

func integer(d map[string]any, keys ...string) int {
	n, _ := number(d, keys...)
	return int(n.IntPart())
}

func money(d map[string]any, keys ...string) decimal.Decimal {
	n, _ := number(d, keys...)
	if n.IsNegative() {
		return decimal.Zero
	}
	return n.Round(2)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
