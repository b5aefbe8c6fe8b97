package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// Scoped accessors all follow the same discipline: reload the document,
// shallow-merge the caller's partial over the sub-object, save the whole
// document. Keys absent from the partial keep their stored values.

func (s *Store) GetCurrentOffer(ctx context.Context) storage.Offer {
	return s.Load(ctx).CurrentOffer
}

func (s *Store) SaveCurrentOffer(ctx context.Context, partial map[string]any) error {
	return s.saveSection(ctx, "currentOffer", partial)
}

func (s *Store) GetBranding(ctx context.Context) storage.Branding {
	return s.Load(ctx).Branding
}

func (s *Store) SaveBranding(ctx context.Context, partial map[string]any) error {
	return s.saveSection(ctx, "branding", partial)
}

func (s *Store) GetLabels(ctx context.Context) storage.Labels {
	return s.Load(ctx).Labels
}

func (s *Store) SaveLabels(ctx context.Context, partial map[string]any) error {
	return s.saveSection(ctx, "labels", partial)
}

func (s *Store) GetSettings(ctx context.Context) storage.Settings {
	return s.Load(ctx).Settings
}

func (s *Store) SaveSettings(ctx context.Context, partial map[string]any) error {
	return s.saveSection(ctx, "settings", partial)
}

func (s *Store) GetCustomDropdowns(ctx context.Context) map[string][]string {
	return s.Load(ctx).CustomDropdowns
}

func (s *Store) SaveCustomDropdowns(ctx context.Context, partial map[string]any) error {
	return s.saveSection(ctx, "customDropdowns", partial)
}

func (s *Store) saveSection(ctx context.Context, section string, partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadMap(ctx)
	sub := subMap(m, section)
	for k, v := range partial {
		sub[k] = v
	}
	return s.saveMap(ctx, m)
}

// SaveTemplate appends an immutable named snapshot of the offer and branding.
func (s *Store) SaveTemplate(ctx context.Context, name string, offer storage.Offer, branding storage.Branding) (storage.Template, error) {
	tpl := storage.Template{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Data:      offer,
		Branding:  branding,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadMap(ctx)
	arr, _ := m["templates"].([]any)
	arr = append(arr, toMap(tpl))
	m["templates"] = arr

	if err := s.saveMap(ctx, m); err != nil {
		return storage.Template{}, err
	}
	return tpl, nil
}

func (s *Store) GetTemplates(ctx context.Context) []storage.Template {
	return s.Load(ctx).Templates
}

// DeleteTemplate removes by identifier and reports whether it existed.
func (s *Store) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadMap(ctx)
	arr, _ := m["templates"].([]any)

	kept := make([]any, 0, len(arr))
	found := false
	for _, t := range arr {
		tm, ok := t.(map[string]any)
		if ok && tm["id"] == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return false, nil
	}

	m["templates"] = kept
	if err := s.saveMap(ctx, m); err != nil {
		return false, err
	}
	return true, nil
}

// IsFieldLocked checks membership in settings.lockedFields.
func (s *Store) IsFieldLocked(ctx context.Context, fieldID string) bool {
	for _, f := range s.GetSettings(ctx).LockedFields {
		if f == fieldID {
			return true
		}
	}
	return false
}

// ToggleFieldLock flips a field's lock and returns the new state.
func (s *Store) ToggleFieldLock(ctx context.Context, fieldID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadMap(ctx)
	settings := subMap(m, "settings")

	cur, _ := settings["lockedFields"].([]any)
	next := make([]any, 0, len(cur)+1)
	locked := true
	for _, f := range cur {
		if f == fieldID {
			locked = false
			continue
		}
		next = append(next, f)
	}
	if locked {
		next = append(next, fieldID)
	}
	settings["lockedFields"] = next

	if err := s.saveMap(ctx, m); err != nil {
		return !locked, err
	}
	return locked, nil
}

// ExportSnapshot carries only offer, branding and labels. Templates, settings
// and the API key never leave through an export.
func (s *Store) ExportSnapshot(ctx context.Context) storage.Snapshot {
	state := s.Load(ctx)
	return storage.Snapshot{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		CurrentOffer: state.CurrentOffer,
		Branding:     state.Branding,
		Labels:       state.Labels,
	}
}

const snapshotSchema = `{
	"type": "object",
	"properties": {
		"currentOffer":    {"type": "object"},
		"branding":        {"type": "object"},
		"labels":          {"type": "object"},
		"customDropdowns": {"type": "object"}
	}
}`

// ImportSnapshot merges each present section of an exported snapshot into the
// current document. Malformed input aborts before any mutation.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	const op = "service.store.ImportSnapshot"

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(snapshotSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%s: snapshot is not valid JSON: %w", op, err)
	}
	if !result.Valid() {
		return fmt.Errorf("%s: snapshot rejected: %s", op, result.Errors()[0].String())
	}

	var in map[string]any
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%s: snapshot is not valid JSON: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadMap(ctx)
	for _, section := range []string{"currentOffer", "branding", "labels", "customDropdowns"} {
		sub, ok := in[section].(map[string]any)
		if !ok {
			continue
		}
		m[section] = deepMerge(subMap(m, section), sub)
	}

	return s.saveMap(ctx, m)
}

// GetAPIKey returns the decoded key, empty when unset or undecodable.
func (s *Store) GetAPIKey(ctx context.Context) string {
	raw := s.Load(ctx).APIKey
	if raw == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// SetAPIKey stores the key base64-encoded at rest.
func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadMap(ctx)
	if key == "" {
		m["apiKey"] = ""
	} else {
		m["apiKey"] = base64.StdEncoding.EncodeToString([]byte(key))
	}
	return s.saveMap(ctx, m)
}
