package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/registry"
)

// OrderTable is the type name of the sample table.
const OrderTable = "Shop.Order"

// OrderStatuses are the enum names of Order.Status.
var OrderStatuses = []string{"Pending", "Paid", "Shipped", "Cancelled"}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func nav(t testing.TB, path string) []model.Hop {
	t.Helper()
	hops, err := model.ParseNavigation(path)
	if err != nil {
		t.Fatalf("ParseNavigation(%q): %v", path, err)
	}
	return hops
}

func typ(t testing.TB, s string) model.TypeSetting {
	t.Helper()
	ts, err := model.ParseTypeSetting(s)
	if err != nil {
		t.Fatalf("ParseTypeSetting(%q): %v", s, err)
	}
	return ts
}

// OrderFields returns a fresh copy of the sample Order fields:
//
//	Id, Status (enum), Total (decimal), CreatedAt, Note, Vip, Tags ([]string),
//	TrackingId (guid), Items[].Sku, Items[].Quantity, Items[].Product.Category,
//	Items[].Labels ([]string), Customer.Name (ignore prefix),
//	Customer.Addresses[].City, Shipments[].Parcels[].Code
func OrderFields(t testing.TB) []*model.Field {
	t.Helper()
	status := typ(t, "enum")
	status.EnumValues = OrderStatuses

	return []*model.Field{
		{ReflectionName: "Id", ActivateNames: []string{"id"}, Type: typ(t, "long")},
		{ReflectionName: "Status", ActivateNames: []string{"status", "状态"}, Type: status},
		{ReflectionName: "Total", ActivateNames: []string{"total"}, Type: typ(t, "decimal")},
		{ReflectionName: "CreatedAt", ActivateNames: []string{"created"}, Type: typ(t, "datetime")},
		{ReflectionName: "Note", ActivateNames: []string{"note"}, Type: typ(t, "string")},
		{ReflectionName: "Vip", ActivateNames: []string{"vip"}, Type: typ(t, "bool")},
		{ReflectionName: "Tags", ActivateNames: []string{"tags"}, Type: typ(t, "[]string")},
		{ReflectionName: "TrackingId", ActivateNames: []string{"tracking"}, Type: typ(t, "guid?"), Fuzz: model.FuzzSetting{Ignored: true}},
		{ReflectionName: "Sku", Navigation: nav(t, "Items[]"), Type: typ(t, "string")},
		{ReflectionName: "Quantity", Navigation: nav(t, "Items[]"), Type: typ(t, "int")},
		{ReflectionName: "Category", ActivateNames: []string{"category"}, Navigation: nav(t, "Items[].Product"), Type: typ(t, "string")},
		{ReflectionName: "Labels", ActivateNames: []string{"labels"}, Navigation: nav(t, "Items[]"), Type: typ(t, "[]string"), Fuzz: model.FuzzSetting{NotSupported: true}},
		{ReflectionName: "Name", Navigation: nav(t, "Customer"), IgnorePrefix: true, Type: typ(t, "string")},
		{ReflectionName: "City", ActivateNames: []string{"city"}, Navigation: nav(t, "Customer.Addresses[]"), Type: typ(t, "string")},
		{ReflectionName: "Code", ActivateNames: []string{"parcel"}, Navigation: nav(t, "Shipments[].Parcels[]"), Type: typ(t, "string")},
	}
}

// OrderRegistry returns a sealed registry holding the sample Order table.
func OrderRegistry(t testing.TB, opts ...registry.Option) *registry.Registry {
	t.Helper()
	opts = append([]registry.Option{registry.WithLogger(DiscardLogger())}, opts...)
	r := registry.New(opts...)
	if err := r.Register(&model.Table{Name: OrderTable, DisplayName: "Order", Fields: OrderFields(t)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Seal()
	return r
}
