package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"almoner/internal/donor"
)

// DonorAPI is an in-memory fake of the donor backend used by client,
// workflow, and CLI tests. Only the behavior the frontend observes is
// modeled: CRUD, search over names, canned duplicate lists, and merge.
type DonorAPI struct {
	mu         sync.Mutex
	nextID     int64
	donors     map[int64]donor.Donor
	duplicates map[int64][]int64
	tags       map[int64][]string
	failWith   int

	MergeCalls  int
	CreateCalls int
	UpdateCalls int
}

// NewDonorAPI builds an empty fake backend.
func NewDonorAPI() *DonorAPI {
	return &DonorAPI{
		nextID:     1,
		donors:     map[int64]donor.Donor{},
		duplicates: map[int64][]int64{},
		tags:       map[int64][]string{},
	}
}

// StartDonorAPI wires the fake backend into an httptest server with
// cleanup registered on t.
func StartDonorAPI(t testing.TB, api *DonorAPI) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return server
}

// Seed inserts a donor and returns it with an assigned id.
func (a *DonorAPI) Seed(d donor.Donor) donor.Donor {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d.ID == 0 {
		d.ID = a.nextID
		a.nextID++
	} else if d.ID >= a.nextID {
		a.nextID = d.ID + 1
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	a.donors[d.ID] = d
	return d
}

// SetDuplicates registers the canned duplicate candidate ids for a donor.
func (a *DonorAPI) SetDuplicates(id int64, candidateIDs ...int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.duplicates[id] = candidateIDs
}

// FailNextWith makes every subsequent request answer with the given
// status code until reset with 0.
func (a *DonorAPI) FailNextWith(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failWith = status
}

// Tags returns the tags recorded for a donor.
func (a *DonorAPI) Tags(id int64) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.tags[id]...)
}

// Donor returns the stored record for id.
func (a *DonorAPI) Donor(id int64) (donor.Donor, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.donors[id]
	return d, ok
}

func (a *DonorAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failWith != 0 {
		http.Error(w, "injected failure", a.failWith)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/donors")
	switch {
	case path == "" || path == "/":
		switch r.Method {
		case http.MethodGet:
			a.handleList(w, r)
		case http.MethodPost:
			a.handleCreate(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case path == "/search":
		a.handleSearch(w, r)
	case path == "/merge":
		a.handleMerge(w, r)
	case strings.HasSuffix(path, "/duplicates"):
		a.handleDuplicates(w, strings.TrimSuffix(strings.Trim(path, "/"), "/duplicates"))
	case strings.HasSuffix(path, "/tags"):
		a.handleAddTag(w, r, strings.TrimSuffix(strings.Trim(path, "/"), "/tags"))
	default:
		a.handleByID(w, r, strings.Trim(path, "/"))
	}
}

func (a *DonorAPI) handleList(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}

	all := a.sortedDonors()
	if skip > len(all) {
		skip = len(all)
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	writeJSON(w, all)
}

func (a *DonorAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))
	matched := []donor.Donor{}
	for _, d := range a.sortedDonors() {
		name := strings.ToLower(d.DisplayName())
		email := strings.ToLower(d.Email)
		if strings.Contains(name, query) || strings.Contains(email, query) {
			matched = append(matched, d)
		}
	}
	writeJSON(w, matched)
}

func (a *DonorAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	a.CreateCalls++
	var payload donor.Create
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d := donor.Donor{
		ID:          a.nextID,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		FullName:    strings.TrimSpace(payload.FirstName + " " + payload.LastName),
		Email:       payload.Email,
		Phone:       payload.Phone,
		City:        payload.City,
		State:       payload.State,
		Company:     payload.Company,
		DonorStatus: "active",
		DonorType:   payload.DonorType,
		CreatedAt:   time.Now().UTC(),
	}
	a.nextID++
	a.donors[d.ID] = d
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, d)
}

func (a *DonorAPI) handleMerge(w http.ResponseWriter, r *http.Request) {
	a.MergeCalls++
	var body struct {
		PrimaryDonorID   int64 `json:"primary_donor_id"`
		DuplicateDonorID int64 `json:"duplicate_donor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	primary, ok := a.donors[body.PrimaryDonorID]
	if !ok {
		http.Error(w, "primary not found", http.StatusNotFound)
		return
	}
	duplicate, ok := a.donors[body.DuplicateDonorID]
	if !ok {
		http.Error(w, "duplicate not found", http.StatusNotFound)
		return
	}
	primary.TotalGifts += duplicate.TotalGifts
	primary.TotalGiftCount += duplicate.TotalGiftCount
	a.donors[primary.ID] = primary
	delete(a.donors, duplicate.ID)
	writeJSON(w, primary)
}

func (a *DonorAPI) handleDuplicates(w http.ResponseWriter, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	candidates := []donor.Donor{}
	for _, candidateID := range a.duplicates[id] {
		if d, ok := a.donors[candidateID]; ok {
			candidates = append(candidates, d)
		}
	}
	writeJSON(w, candidates)
}

func (a *DonorAPI) handleAddTag(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if _, ok := a.donors[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	var body struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.tags[id] = append(a.tags[id], body.TagName)
	w.WriteHeader(http.StatusNoContent)
}

func (a *DonorAPI) handleByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	existing, ok := a.donors[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, existing)
	case http.MethodPut:
		a.UpdateCalls++
		var payload donor.Update
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		existing.FirstName = payload.FirstName
		existing.LastName = payload.LastName
		existing.FullName = strings.TrimSpace(payload.FirstName + " " + payload.LastName)
		existing.Email = payload.Email
		existing.Phone = payload.Phone
		existing.City = payload.City
		existing.State = payload.State
		existing.Company = payload.Company
		if payload.DonorType != "" {
			existing.DonorType = payload.DonorType
		}
		a.donors[id] = existing
		writeJSON(w, existing)
	case http.MethodDelete:
		delete(a.donors, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *DonorAPI) sortedDonors() []donor.Donor {
	out := make([]donor.Donor, 0, len(a.donors))
	for _, d := range a.donors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
