package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/listing"
)

func newAPI(t *testing.T, h http.HandlerFunc) *backend.API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api", Tokens: apiclient.StaticToken("tok")})
	if err != nil {
		t.Fatal(err)
	}
	return backend.New(c)
}

func TestListRestaurantsQuery(t *testing.T) {
	var got *http.Request
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"data":[{"id":7,"name":"Pizza Palace","status":"Approved"}],
			"pagination":{"totalCount":21,"totalPages":3,"pageNumber":1,"pageSize":10}}`))
	})

	q := listing.NewQuery[backend.RestaurantFilter]()
	q.Filter.Status = enum.RestaurantStatusApproved
	q.Search = "piz"
	page, err := api.ListRestaurants(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}

	if got.URL.Path != "/api/admin/restaurants" {
		t.Errorf("path: got %s", got.URL.Path)
	}
	v := got.URL.Query()
	if v.Get("page_number") != "1" || v.Get("status") != "Approved" || v.Get("search") != "piz" || v.Get("page_size") != "10" {
		t.Errorf("query: got %s", got.URL.RawQuery)
	}
	if v.Has("page") {
		t.Error("restaurants must use page_number")
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Pizza Palace" {
		t.Errorf("items: got %+v", page.Items)
	}
	if page.Meta == nil || page.Meta.TotalCount == nil || *page.Meta.TotalCount != 21 {
		t.Errorf("meta: got %+v", page.Meta)
	}
}

func TestListOmitsAllFilters(t *testing.T) {
	var raw string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		w.Write([]byte(`{"data":[]}`))
	})

	page, err := api.ListOrders(context.Background(), listing.NewQuery[backend.OrderFilter]())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(raw, "status") || strings.Contains(raw, "search") {
		t.Errorf("All filters leaked to the wire: %s", raw)
	}
	if page.Meta != nil {
		t.Error("missing pagination block must stay nil")
	}
}

func TestListCustomersActivity(t *testing.T) {
	var v string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		v = r.URL.Query().Get("is_active")
		w.Write([]byte(`{"data":[],"pagination":{"totalCount":0}}`))
	})
	q := listing.NewQuery[backend.CustomerFilter]()
	q.Filter.Activity = enum.ActivityInactive
	if _, err := api.ListCustomers(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if v != "false" {
		t.Errorf("is_active: got %q", v)
	}
}

func TestRejectRestaurantBody(t *testing.T) {
	var body map[string]string
	var method, path string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"status":"success","message":"Restaurant rejected"}`))
	})

	ack, err := api.RejectRestaurant(context.Background(), 12, "Missing FSSAI license")
	if err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPatch || path != "/api/admin/restaurants/12/reject" {
		t.Errorf("request: %s %s", method, path)
	}
	if body["rejection_reason"] != "Missing FSSAI license" {
		t.Errorf("body: got %v", body)
	}
	if ack.Message != "Restaurant rejected" {
		t.Errorf("ack: got %+v", ack)
	}
}

func TestUpdateOrderStatusSendsWireValue(t *testing.T) {
	var body map[string]string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"status":"success","message":"ok"}`))
	})
	if _, err := api.UpdateOrderStatus(context.Background(), 3, enum.OrderStatusOutForDelivery); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "out_for_delivery" {
		t.Errorf("status: got %q", body["status"])
	}
}

func TestOrderTotalsAreDecimal(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":1,"total_amount":"249.90","items":[{"name":"Margherita","quantity":3,"price":83.30}]}}`))
	})
	o, err := api.GetOrder(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !o.TotalAmount.Equal(decimal.RequireFromString("249.90")) {
		t.Errorf("total: got %s", o.TotalAmount)
	}
	if got := o.Items[0].Subtotal(); !got.Equal(decimal.RequireFromString("249.9")) {
		t.Errorf("subtotal: got %s", got)
	}
}

func TestCreateItemSendsMultipartImage(t *testing.T) {
	var fields map[string]string
	var image string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse: %v", err)
			return
		}
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		if fh := r.MultipartForm.File[backend.ImageField]; len(fh) == 1 {
			image = fh[0].Filename
		}
		w.Write([]byte(`{"status":"success","message":"Item created"}`))
	})

	in := backend.ItemInput{CategoryID: 2, Name: "Paneer Tikka", Price: decimal.RequireFromString("199.5"), IsAvailable: true}
	img := &apiclient.File{Name: "tikka.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg")}
	ack, err := api.CreateItem(context.Background(), in, img)
	if err != nil {
		t.Fatal(err)
	}
	if ack.Message != "Item created" {
		t.Errorf("ack: got %+v", ack)
	}
	if fields["price"] != "199.50" || fields["category_id"] != "2" || fields["is_available"] != "true" {
		t.Errorf("fields: got %v", fields)
	}
	if _, ok := fields["subcategory_id"]; ok {
		t.Error("unset subcategory must be omitted")
	}
	if image != "tikka.jpg" {
		t.Errorf("image: got %q", image)
	}
}

func TestItemExtraPaths(t *testing.T) {
	var paths []string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"status":"success","message":"ok"}`))
	})
	ctx := context.Background()
	api.AddItemExtra(ctx, 4, backend.Addons, backend.ExtraInput{Name: "Extra cheese", Price: decimal.NewFromInt(30)})
	api.DeleteItemExtra(ctx, 4, backend.Modifiers, 9)

	want := []string{"POST /api/admin/menu/items/4/addons", "DELETE /api/admin/menu/items/4/modifiers/9"}
	for i := range want {
		if i >= len(paths) || paths[i] != want[i] {
			t.Fatalf("paths: got %v, want %v", paths, want)
		}
	}
	if _, err := backend.ParseExtraKind("toppings"); err == nil {
		t.Error("expected unknown kind error")
	}
}

func TestLoginUnwrapsEnvelope(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"token":"abc","admin":{"id":1,"email":"ops@dinehub.test","role":"super_admin"}}}`))
	})
	res, err := api.Login(context.Background(), "ops@dinehub.test", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if res.Token != "abc" || res.Admin.Role != enum.AdminRoleSuper {
		t.Errorf("got %+v", res)
	}
}

func TestRestaurantActions(t *testing.T) {
	if got := (backend.Restaurant{Status: "Pending"}).Actions(); len(got) != 2 {
		t.Errorf("pending: got %v", got)
	}
	if got := (backend.Restaurant{Status: "Approved"}).Actions(); len(got) != 0 {
		t.Errorf("approved: got %v", got)
	}
}
