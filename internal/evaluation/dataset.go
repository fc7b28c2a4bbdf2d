package evaluation

import (
	"encoding/json"
	"os"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"go.uber.org/multierr"
)

// ExpectedLine is one entry of an expected canonical cart. Order never
// matters; comparison runs over the line keys.
type ExpectedLine struct {
	SKU       string   `json:"sku"`
	Size      string   `json:"size,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	Quantity  int      `json:"quantity"`
}

// Key returns the canonical line key for this expectation.
func (l ExpectedLine) Key() string {
	return resolver.LineKey(l.SKU, l.Size, l.Modifiers)
}

// Case replays one recorded event sequence against an expected final cart.
type Case struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Menu        string         `json:"menu"`
	Events      []cart.Event   `json:"events"`
	Expected    []ExpectedLine `json:"expected"`
}

// Dataset is the on-disk collection of evaluation cases.
type Dataset struct {
	Cases []Case `json:"cases"`
}

// LoadDataset reads and validates a dataset file. A dataset with broken
// cases is rejected whole; every problem is reported at once.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read dataset").
			WithDetails(map[string]any{"path": path})
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode dataset").
			WithDetails(map[string]any{"path": path})
	}
	if err := ds.validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dataset").
			WithDetails(map[string]any{"path": path})
	}
	return &ds, nil
}

func (ds *Dataset) validate() error {
	var verr error
	if len(ds.Cases) == 0 {
		verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeValidation, "dataset has no cases"))
	}
	seen := make(map[string]struct{}, len(ds.Cases))
	for i, c := range ds.Cases {
		if c.ID == "" {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeValidation, "case missing id").
				WithDetails(map[string]any{"index": i}))
			continue
		}
		if _, dup := seen[c.ID]; dup {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeValidation, "duplicate case id").
				WithDetails(map[string]any{"id": c.ID}))
		}
		seen[c.ID] = struct{}{}
		if c.Menu == "" {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeValidation, "case missing menu").
				WithDetails(map[string]any{"id": c.ID}))
		}
		if len(c.Events) == 0 {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeValidation, "case has no events").
				WithDetails(map[string]any{"id": c.ID}))
		}
		for _, line := range c.Expected {
			if line.SKU == "" || line.Quantity < 1 {
				verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeValidation, "expected line needs a sku and a positive quantity").
					WithDetails(map[string]any{"id": c.ID, "sku": line.SKU}))
			}
		}
	}
	return verr
}

// FilterByMenu keeps only cases for the named menu. An empty name keeps
// everything.
func (ds *Dataset) FilterByMenu(menu string) []Case {
	if menu == "" {
		return ds.Cases
	}
	out := make([]Case, 0, len(ds.Cases))
	for _, c := range ds.Cases {
		if c.Menu == menu {
			out = append(out, c)
		}
	}
	return out
}
