package donor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"almoner/internal/auth"
	"almoner/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestListAndSearchPassThroughQueryParams(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/donors":
			if got := r.URL.Query().Get("skip"); got != "20" {
				t.Fatalf("unexpected skip: %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "10" {
				t.Fatalf("unexpected limit: %q", got)
			}
		case "/api/v1/donors/search":
			if got := r.URL.Query().Get("q"); got != "doe" {
				t.Fatalf("unexpected query: %q", got)
			}
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Donor{{ID: 7, FirstName: "Jane", LastName: "Doe"}})
	}))

	ctx := context.Background()
	donors, err := client.List(ctx, 20, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(donors) != 1 || donors[0].ID != 7 {
		t.Fatalf("unexpected list result: %+v", donors)
	}

	donors, err = client.Search(ctx, "doe", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(donors) != 1 || donors[0].DisplayName() != "Jane Doe" {
		t.Fatalf("unexpected search result: %+v", donors)
	}
}

func TestCreateSendsFormPayloadAndAuditHeaders(t *testing.T) {
	provider := auth.NewStatic(config.Operator{Email: "ops@example.org"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/donors" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("missing content type")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("missing request id")
		}
		if got := r.Header.Get("X-Requested-By"); got != "ops@example.org" {
			t.Fatalf("unexpected operator header: %q", got)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["first_name"] != "Jane" || payload["do_not_email"] != true {
			t.Fatalf("unexpected payload: %v", payload)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Donor{ID: 12, FirstName: "Jane", LastName: "Doe"})
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: provider})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	saved, err := client.Create(context.Background(), Create{
		FirstName:  "Jane",
		LastName:   "Doe",
		DoNotEmail: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if saved.ID != 12 {
		t.Fatalf("unexpected saved donor: %+v", saved)
	}
}

func TestUpdateMergeTagAndDelete(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/donors/3":
			json.NewEncoder(w).Encode(Donor{ID: 3, FirstName: "Janet", LastName: "Doe"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/donors/merge":
			var body mergeRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode merge body: %v", err)
			}
			if body.PrimaryDonorID != 3 || body.DuplicateDonorID != 9 {
				t.Fatalf("unexpected merge body: %+v", body)
			}
			json.NewEncoder(w).Encode(Donor{ID: 3})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/donors/3/tags":
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode tag body: %v", err)
			}
			if body["tag_name"] != "major-gift" {
				t.Fatalf("unexpected tag body: %v", body)
			}
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/donors/3":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	ctx := context.Background()
	updated, err := client.Update(ctx, 3, Update{Create: Create{FirstName: "Janet", LastName: "Doe"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FirstName != "Janet" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	merged, err := client.Merge(ctx, 3, 9)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.ID != 3 {
		t.Fatalf("unexpected merged donor: %+v", merged)
	}

	if err := client.AddTag(ctx, 3, "major-gift"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := client.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestNonSuccessStatusYieldsRequestError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusUnprocessableEntity)
	}))

	_, err := client.Get(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status code: %d", reqErr.StatusCode)
	}
	if reqErr.Op != "fetch donor" {
		t.Fatalf("unexpected op: %q", reqErr.Op)
	}
	if !IsRequestFailed(err) {
		t.Fatal("IsRequestFailed should report true")
	}
}

func TestFindDuplicatesReturnsAllCandidates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/donors/5/duplicates" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Donor{{ID: 6}, {ID: 8}})
	}))

	candidates, err := client.FindDuplicates(context.Background(), 5)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
}

func TestNewClientRejectsRelativeBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "localhost:8000"}); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}
