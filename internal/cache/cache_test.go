package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
)

func sampleKey() Key {
	return Key{
		Command:         "fakegit",
		ExecutablePath:  "/usr/bin/fakegit",
		MtimeSecs:       1700000000,
		SizeBytes:       123456,
		MinConfidenceBP: 5000,
		MinCoverageBP:   3000,
	}
}

func TestGetMissesOnEmptyCache(t *testing.T) {
	c := New(t.TempDir())
	entry, err := c.Get(sampleKey())
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nested"))
	s := schema.New("fakegit", schema.SourceHelpCommand)
	s.GlobalFlags = []schema.FlagSchema{schema.BooleanFlag("-v", "--verbose")}

	entry := &Entry{
		Key:             sampleKey(),
		Schema:          s,
		Report:          &report.ExtractionReport{Command: "fakegit", Success: true},
		DetectedVersion: "2.39.1",
		ProbeMode:       "help",
	}
	require.NoError(t, c.Put(entry))
	assert.NotEmpty(t, entry.CachedAt)

	got, err := c.Get(sampleKey())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Key, got.Key)
	assert.Equal(t, "2.39.1", got.DetectedVersion)
	assert.Equal(t, "help", got.ProbeMode)
	require.NotNil(t, got.Schema)
	assert.Equal(t, "fakegit", got.Schema.Command)
	require.Len(t, got.Schema.GlobalFlags, 1)
	assert.Equal(t, "--verbose", got.Schema.GlobalFlags[0].Long)
}

func TestChangedFingerprintMisses(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put(&Entry{Key: sampleKey()}))

	changed := sampleKey()
	changed.MtimeSecs++
	got, err := c.Get(changed)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChangedPolicyMisses(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put(&Entry{Key: sampleKey()}))

	changed := sampleKey()
	changed.AllowLowQuality = true
	got, err := c.Get(changed)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, c.Put(&Entry{Key: sampleKey()}))
	require.NoError(t, os.WriteFile(c.entryPath(sampleKey()), []byte("{not json"), 0o644))

	got, err := c.Get(sampleKey())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemoveAndClear(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put(&Entry{Key: sampleKey()}))
	require.NoError(t, c.Remove(sampleKey()))
	got, err := c.Get(sampleKey())
	require.NoError(t, err)
	assert.Nil(t, got)

	// Remove on a missing entry is not an error.
	require.NoError(t, c.Remove(sampleKey()))

	other := sampleKey()
	other.Command = "other"
	require.NoError(t, c.Put(&Entry{Key: sampleKey()}))
	require.NoError(t, c.Put(&Entry{Key: other}))
	require.NoError(t, c.Clear())
	got, err = c.Get(other)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBuildKeyConvertsPolicyToBasisPoints(t *testing.T) {
	policy := report.QualityPolicy{MinConfidence: 0.5, MinCoverage: 0.3}
	key, err := BuildKey("sh", policy)
	require.NoError(t, err)
	assert.Equal(t, "sh", key.Command)
	assert.NotEmpty(t, key.ExecutablePath)
	assert.Equal(t, uint32(5000), key.MinConfidenceBP)
	assert.Equal(t, uint32(3000), key.MinCoverageBP)
	assert.False(t, key.AllowLowQuality)
}

func TestBuildKeyFailsForMissingBinary(t *testing.T) {
	_, err := BuildKey("definitely-not-a-real-binary-xyz", report.DefaultPolicy())
	assert.Error(t, err)
	_, err = BuildKey("   ", report.DefaultPolicy())
	assert.Error(t, err)
}
