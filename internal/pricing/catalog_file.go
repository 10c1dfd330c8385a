package pricing

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

// Catalogs bundles the membership (spend) and agent (role) ladders.
type Catalogs struct {
	Membership *Catalog
	Agent      *Catalog
}

// DefaultCatalogs returns the built-in ladders.
func DefaultCatalogs() *Catalogs {
	return &Catalogs{
		Membership: MustCatalog(DefaultMembershipTiers()),
		Agent:      MustCatalog(DefaultAgentTiers()),
	}
}

// LoadCatalogs reads both ladders from a JSON file shaped like model.TiersResponse.
// An empty path returns the built-in ladders. A ladder missing from the file
// falls back to its built-in default.
func LoadCatalogs(path string) (*Catalogs, error) {
	if path == "" {
		return DefaultCatalogs(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier catalog: %w", err)
	}

	var file model.TiersResponse
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode tier catalog: %w", err)
	}

	membership := file.Membership
	if len(membership) == 0 {
		membership = DefaultMembershipTiers()
	}
	agent := file.Agent
	if len(agent) == 0 {
		agent = DefaultAgentTiers()
	}

	m, err := NewCatalog(membership)
	if err != nil {
		return nil, fmt.Errorf("membership catalog: %w", err)
	}
	a, err := NewCatalog(agent)
	if err != nil {
		return nil, fmt.Errorf("agent catalog: %w", err)
	}
	return &Catalogs{Membership: m, Agent: a}, nil
}
