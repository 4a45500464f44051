package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ex1tium/cmdschema/internal/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "schemas.db"), "cs_")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSchema() *schema.CommandSchema {
	jsonFlag := schema.BooleanFlag("-j", "--json")
	jsonFlag.Description = "emit JSON"
	jsonFlag.ConflictsWith = []string{"--yaml"}
	yamlFlag := schema.BooleanFlag("", "--yaml")
	tokenFlag := schema.ValueFlag("-t", "--token", schema.ValueType{Kind: schema.ValueString})
	tokenFlag.Requires = []string{"--json"}

	push := schema.NewSubcommand("push")
	push.Description = "upload refs"
	push.Aliases = []string{"pu"}
	push.Flags = []schema.FlagSchema{
		schema.ValueFlag("-f", "--format", schema.Choice([]string{"short", "full"})),
	}
	push.Positional = []schema.ArgSchema{
		schema.RequiredArg("remote", schema.ValueType{Kind: schema.ValueRemote}),
		schema.OptionalArg("branch", schema.ValueType{Kind: schema.ValueBranch}),
	}
	push.Subcommands = []schema.SubcommandSchema{schema.NewSubcommand("tags")}

	c := schema.New("fakegit", schema.SourceHelpCommand)
	c.SchemaVersion = schema.ContractVersion
	c.Description = "a test command"
	c.Version = "2.39.1"
	c.Confidence = 0.87
	c.GlobalFlags = []schema.FlagSchema{jsonFlag, yamlFlag, tokenFlag}
	c.Positional = []schema.ArgSchema{schema.OptionalArg("path", schema.ValueType{Kind: schema.ValueFile})}
	c.Subcommands = []schema.SubcommandSchema{push}
	return c
}

func TestOpenRejectsBadPrefix(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "a.db"), "")
	assert.Error(t, err)
	_, err = Open(filepath.Join(dir, "b.db"), "bad-prefix")
	assert.Error(t, err)
	_, err = Open(filepath.Join(dir, "c.db"), "cs_; DROP TABLE")
	assert.Error(t, err)
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "schemas.db")
	s, err := Open(path, "cs_")
	require.NoError(t, err)
	s.Close()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	want := sampleSchema()
	require.NoError(t, s.Save(want))

	got, err := s.Load("fakegit")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.Command, got.Command)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.SchemaVersion, got.SchemaVersion)
	assert.Equal(t, want.Source, got.Source)
	assert.InDelta(t, want.Confidence, got.Confidence, 1e-9)
	if diff := cmp.Diff(want.GlobalFlags, got.GlobalFlags); diff != "" {
		t.Errorf("global flags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Positional, got.Positional); diff != "" {
		t.Errorf("positional args mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Subcommands, got.Subcommands); diff != "" {
		t.Errorf("subcommand tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Load("no-such-command")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveUpsertsByName(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save(sampleSchema()))

	replacement := schema.New("fakegit", schema.SourceManPage)
	replacement.GlobalFlags = []schema.FlagSchema{schema.BooleanFlag("-q", "--quiet")}
	require.NoError(t, s.Save(replacement))

	got, err := s.Load("fakegit")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema.SourceManPage, got.Source)
	require.Len(t, got.GlobalFlags, 1)
	assert.Equal(t, "--quiet", got.GlobalFlags[0].Long)
	assert.Empty(t, got.Subcommands)

	names, err := s.ListCommands()
	require.NoError(t, err)
	assert.Equal(t, []string{"fakegit"}, names)
}

func TestDeleteReportsPresence(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save(sampleSchema()))

	removed, err := s.Delete("fakegit")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete("fakegit")
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := s.Load("fakegit")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadAllOrdersByName(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		c := schema.New(name, schema.SourceHelpCommand)
		require.NoError(t, s.Save(c))
	}
	all, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Command)
	assert.Equal(t, "mid", all[1].Command)
	assert.Equal(t, "zeta", all[2].Command)
}

func TestPrefixesIsolateSchemaSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	a, err := Open(path, "one_")
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(path, "two_")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Save(schema.New("only-in-a", schema.SourceHelpCommand)))

	got, err := b.Load("only-in-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = a.Load("only-in-a")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
