package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage/memory"
)

type fakeSink struct {
	notices []string
	levels  []string
}

func (f *fakeSink) Notify(message, level string) {
	f.notices = append(f.notices, message)
	f.levels = append(f.levels, level)
}

// recordingKV wraps another backend and records every attempted write size,
// so ladder ordering is observable.
type recordingKV struct {
	inner storage.KeyValueStore
	sizes []int
}

func (r *recordingKV) Get(ctx context.Context, key string) (string, error) {
	return r.inner.Get(ctx, key)
}

func (r *recordingKV) Set(ctx context.Context, key string, value string) error {
	r.sizes = append(r.sizes, len(value))
	return r.inner.Set(ctx, key, value)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(kv storage.KeyValueStore) (*Store, *fakeSink) {
	sink := &fakeSink{}
	return New(testLogger(), kv, "test_state", sink), sink
}

// noisePNG builds an incompressible image whose base64 data-URL encoding
// lands above the compress threshold but below the drop cutoff.
func noisePNG(t *testing.T, side int) string {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestLoad_EmptyBackendGivesDefaults(t *testing.T) {
	s, _ := newTestStore(memory.New(0))

	state := s.Load(context.Background())

	assert.Equal(t, storage.SchemaVersion, state.SchemaVersion)
	assert.Equal(t, "apartment", state.CurrentOffer.UnitType)
	assert.True(t, state.Settings.AutoCalculate)
	assert.NotEmpty(t, state.Labels)
}

func TestLoad_CorruptDocumentGivesDefaults(t *testing.T) {
	kv := memory.New(0)
	require.NoError(t, kv.Set(context.Background(), "test_state", "{not json"))

	s, _ := newTestStore(kv)
	state := s.Load(context.Background())

	assert.Equal(t, storage.DefaultState(), state)
}

func TestLoad_MergesSavedOverDefaults(t *testing.T) {
	kv := memory.New(0)
	// A document from an older schema: only part of the offer, no settings.
	saved := `{"schemaVersion":1,"currentOffer":{"projectName":"Marina Heights","sellingPrice":2500000}}`
	require.NoError(t, kv.Set(context.Background(), "test_state", saved))

	s, _ := newTestStore(kv)
	state := s.Load(context.Background())

	assert.Equal(t, "Marina Heights", state.CurrentOffer.ProjectName)
	assert.Equal(t, 2500000.0, state.CurrentOffer.SellingPrice)
	// Keys absent from the saved document are filled from defaults.
	assert.Equal(t, "apartment", state.CurrentOffer.UnitType)
	assert.True(t, state.Settings.AutoCalculate)
}

func TestSaveLoad_RoundTripIsIdempotent(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	first := s.Load(ctx)
	require.NoError(t, s.Save(ctx, first))

	second := s.Load(ctx)
	require.NoError(t, s.Save(ctx, second))

	assert.Equal(t, second, s.Load(ctx))
}

func TestSave_StampsSchemaVersion(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	state := s.Load(ctx)
	state.SchemaVersion = 1 // stale stamp from an old document
	require.NoError(t, s.Save(ctx, state))

	assert.Equal(t, storage.SchemaVersion, s.Load(ctx).SchemaVersion)
}

func TestSave_CompressStepSuffices(t *testing.T) {
	// Document with the oversized floor plan does not fit, the recompressed
	// one does.
	kv := memory.New(300 * 1024)
	s, sink := newTestStore(kv)
	ctx := context.Background()

	state := s.Load(ctx)
	state.CurrentOffer.FloorPlanImage = noisePNG(t, 400)
	require.Greater(t, len(state.CurrentOffer.FloorPlanImage), ImageSizeThreshold)

	require.NoError(t, s.Save(ctx, state))

	assert.Contains(t, sink.notices, "storage low, images compressed")
	assert.NotContains(t, sink.notices, "storage full, images removed")

	got := s.Load(ctx).CurrentOffer.FloorPlanImage
	assert.True(t, strings.HasPrefix(got, "data:image/jpeg;base64,"))
	assert.Less(t, len(got), ImageSizeThreshold)
}

func TestSave_StripStepAfterCompressFails(t *testing.T) {
	// The image is oversized but not decodable, so compression cannot shrink
	// it; the ladder must fall through to stripping.
	kv := memory.New(100 * 1024)
	s, sink := newTestStore(kv)
	ctx := context.Background()

	state := s.Load(ctx)
	state.CurrentOffer.FloorPlanImage = "data:image/png;base64," + strings.Repeat("A", 600*1024)
	state.CurrentOffer.ProjectName = "Marina Heights"

	require.NoError(t, s.Save(ctx, state))

	assert.Contains(t, sink.notices, "storage full, images removed")
	assert.NotContains(t, sink.notices, "storage low, images compressed")

	loaded := s.Load(ctx)
	assert.Empty(t, loaded.CurrentOffer.FloorPlanImage)
	// Non-image fields survive the strip.
	assert.Equal(t, "Marina Heights", loaded.CurrentOffer.ProjectName)
}

func TestSave_LadderOrderingCompressBeforeStrip(t *testing.T) {
	// Capacity so tight that even the compressed image does not fit: every
	// rung runs, in order, with shrinking payloads.
	rec := &recordingKV{inner: memory.New(10 * 1024)}
	s, sink := newTestStore(rec)
	ctx := context.Background()

	state := s.Load(ctx)
	state.CurrentOffer.FloorPlanImage = noisePNG(t, 400)

	require.NoError(t, s.Save(ctx, state))

	require.Len(t, rec.sizes, 3)
	assert.Greater(t, rec.sizes[0], rec.sizes[1], "compress attempt must come after the full write")
	assert.Greater(t, rec.sizes[1], rec.sizes[2], "strip attempt must come last")
	assert.Equal(t, []string{"storage full, images removed"}, sink.notices)
}

func TestSave_OversizedImageIsDroppedNotCompressed(t *testing.T) {
	kv := memory.New(100 * 1024)
	s, sink := newTestStore(kv)
	ctx := context.Background()

	state := s.Load(ctx)
	// Past four times the threshold: compression is not even attempted.
	state.Branding.LogoImage = "data:image/png;base64," + strings.Repeat("B", 4*ImageSizeThreshold+1)

	require.NoError(t, s.Save(ctx, state))

	assert.Contains(t, sink.notices, "storage low, images compressed")
	assert.Empty(t, s.Load(ctx).Branding.LogoImage)
}

func TestSave_LadderExhaustedFailsLoudly(t *testing.T) {
	kv := memory.New(64) // nothing fits
	s, sink := newTestStore(kv)
	ctx := context.Background()

	err := s.Save(ctx, s.Load(ctx))

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	require.NotEmpty(t, sink.levels)
	assert.Equal(t, "critical", sink.levels[len(sink.levels)-1])
}

func TestSave_StripReachesTemplates(t *testing.T) {
	s, sink := newTestStore(memory.New(100 * 1024))
	ctx := context.Background()

	// Not decodable, so the compress rung cannot shrink it.
	big := "data:image/png;base64," + strings.Repeat("C", 600*1024)
	state := s.Load(ctx)
	state.Templates = []storage.Template{{
		ID:   "tpl-1",
		Name: "with plan",
		Data: storage.Offer{FloorPlanImage: big},
		Branding: storage.Branding{LogoImage: big},
	}}
	require.NoError(t, s.Save(ctx, state))

	assert.Contains(t, sink.notices, "storage full, images removed")
	loaded := s.Load(ctx)
	require.Len(t, loaded.Templates, 1)
	assert.Equal(t, "with plan", loaded.Templates[0].Name)
	assert.Empty(t, loaded.Templates[0].Data.FloorPlanImage)
	assert.Empty(t, loaded.Templates[0].Branding.LogoImage)
}

func TestScopedSave_PreservesOtherKeys(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	require.NoError(t, s.SaveCurrentOffer(ctx, map[string]any{"projectName": "Marina Heights"}))
	require.NoError(t, s.SaveCurrentOffer(ctx, map[string]any{"sellingPrice": 2500000}))

	offer := s.GetCurrentOffer(ctx)
	assert.Equal(t, "Marina Heights", offer.ProjectName)
	assert.Equal(t, 2500000.0, offer.SellingPrice)
}

func TestScopedSave_IndependentSectionsDoNotClobber(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	require.NoError(t, s.SaveBranding(ctx, map[string]any{"companyName": "Acme Realty"}))
	require.NoError(t, s.SaveLabels(ctx, map[string]any{"refund": "Refund Due"}))
	require.NoError(t, s.SaveSettings(ctx, map[string]any{"autoCalculate": false}))

	assert.Equal(t, "Acme Realty", s.GetBranding(ctx).CompanyName)
	assert.Equal(t, "Refund Due", s.GetLabels(ctx)["refund"])
	assert.False(t, s.GetSettings(ctx).AutoCalculate)
}

func TestTemplates_Lifecycle(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	tpl, err := s.SaveTemplate(ctx, "ready unit",
		storage.Offer{ProjectName: "Marina Heights"},
		storage.Branding{CompanyName: "Acme Realty"},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, tpl.ID)

	_, err = time.Parse(time.RFC3339, tpl.CreatedAt)
	assert.NoError(t, err)

	list := s.GetTemplates(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "ready unit", list[0].Name)
	assert.Equal(t, "Marina Heights", list[0].Data.ProjectName)

	deleted, err := s.DeleteTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, s.GetTemplates(ctx))

	deleted, err = s.DeleteTemplate(ctx, "no-such-id")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFieldLocks_ToggleAndQuery(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	assert.False(t, s.IsFieldLocked(ctx, "refund"))

	locked, err := s.ToggleFieldLock(ctx, "refund")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.True(t, s.IsFieldLocked(ctx, "refund"))

	// Locks survive an unrelated save.
	require.NoError(t, s.SaveCurrentOffer(ctx, map[string]any{"sellingPrice": 1}))
	assert.True(t, s.IsFieldLocked(ctx, "refund"))

	locked, err = s.ToggleFieldLock(ctx, "refund")
	require.NoError(t, err)
	assert.False(t, locked)
	assert.False(t, s.IsFieldLocked(ctx, "refund"))
}

func TestExportSnapshot_ExcludesSensitiveSections(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	require.NoError(t, s.SetAPIKey(ctx, "super-secret"))
	_, err := s.SaveTemplate(ctx, "tpl", storage.Offer{}, storage.Branding{})
	require.NoError(t, err)
	require.NoError(t, s.SaveCurrentOffer(ctx, map[string]any{"projectName": "Marina Heights"}))

	snapshot := s.ExportSnapshot(ctx)
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	assert.Equal(t, "Marina Heights", snapshot.CurrentOffer.ProjectName)
	assert.NotEmpty(t, snapshot.ExportedAt)
	assert.NotContains(t, string(raw), "apiKey")
	assert.NotContains(t, string(raw), "templates")
	assert.NotContains(t, string(raw), "lockedFields")
	assert.NotContains(t, string(raw), "super-secret")
}

func TestImportSnapshot_MalformedIsRejectedWithoutMutation(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	require.NoError(t, s.SaveCurrentOffer(ctx, map[string]any{"projectName": "Before"}))

	assert.Error(t, s.ImportSnapshot(ctx, []byte("{broken")))
	assert.Error(t, s.ImportSnapshot(ctx, []byte(`{"currentOffer": "not an object"}`)))

	assert.Equal(t, "Before", s.GetCurrentOffer(ctx).ProjectName)
}

func TestImportSnapshot_MergesPresentSections(t *testing.T) {
	s, _ := newTestStore(memory.New(0))
	ctx := context.Background()

	require.NoError(t, s.SaveCurrentOffer(ctx, map[string]any{"projectName": "Old", "unitNumber": "101"}))

	snapshot := `{
		"currentOffer": {"projectName": "New"},
		"branding": {"companyName": "Acme Realty"}
	}`
	require.NoError(t, s.ImportSnapshot(ctx, []byte(snapshot)))

	offer := s.GetCurrentOffer(ctx)
	assert.Equal(t, "New", offer.ProjectName)
	// Keys not present in the snapshot section are preserved.
	assert.Equal(t, "101", offer.UnitNumber)
	assert.Equal(t, "Acme Realty", s.GetBranding(ctx).CompanyName)
}

func TestAPIKey_StoredEncodedAtRest(t *testing.T) {
	kv := memory.New(0)
	s, _ := newTestStore(kv)
	ctx := context.Background()

	require.NoError(t, s.SetAPIKey(ctx, "super-secret"))

	assert.Equal(t, "super-secret", s.GetAPIKey(ctx))

	raw, err := kv.Get(ctx, "test_state")
	require.NoError(t, err)
	assert.NotContains(t, raw, "super-secret")
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString([]byte("super-secret")))

	require.NoError(t, s.SetAPIKey(ctx, ""))
	assert.Empty(t, s.GetAPIKey(ctx))
}
