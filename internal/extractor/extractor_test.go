package extractor

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/resolve"
)

const fixtureTree = "../../testdata/cpp"

// Test Plan for the extraction pipeline:
// - Full fixture tree yields the expected document and stats
// - Scalar, duration, array, and object defaults come out typed
// - Enterprise properties classify into the three constructor shapes
// - Deprecated, experimental, and metadata-driven fields are set
// - Unsigned 64-bit defaults serialize without float rounding
// - Two runs produce byte-identical documents
// - Worker count does not change the output
// - Missing source path fails construction
// - A tree without pairs returns ErrNoPairs
// - WriteDocument creates parent directories and writes atomically

func extractFixtureTree(t *testing.T, workers int) (*property.Document, *Stats) {
	t.Helper()

	resolver, err := resolve.New(fixtureTree, resolve.Options{})
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	ex, err := New(fixtureTree, resolver, Options{Recursive: true, Workers: workers})
	require.NoError(t, err)

	doc, stats, err := ex.Run(context.Background())
	require.NoError(t, err)
	return doc, stats
}

func fixtureProperty(t *testing.T, doc *property.Document, name string) *property.Record {
	t.Helper()
	rec, ok := doc.Properties[name]
	require.True(t, ok, "property %q missing from document", name)
	return rec
}

// Test: Full fixture tree yields the expected document and stats
func TestExtractorRun_FullTree(t *testing.T) {
	t.Parallel()

	doc, stats := extractFixtureTree(t, 0)

	assert.Equal(t, 2, stats.PairsDiscovered)
	assert.Equal(t, 2, stats.PairsExtracted)
	assert.Equal(t, 0, stats.PairsSkipped)
	assert.Equal(t, 26, stats.PropertiesEmitted)
	assert.Equal(t, 1, stats.PropertiesDropped)
	assert.Equal(t, 4, stats.EnterpriseCount)

	require.Len(t, doc.Properties, 26)

	// Declared but never initialized: dropped, not emitted half-empty.
	assert.NotContains(t, doc.Properties, "rm_violation_recovery_policy")
	// Plain data members never reach the document.
	assert.NotContains(t, doc.Properties, "_cached_id")
	assert.NotContains(t, doc.Properties, "_startup_delay")
	assert.NotContains(t, doc.Properties, "_cluster_uuid")

	names := doc.Names()
	assert.Equal(t, "cloud_storage_cache_directory", names[0])
	assert.Equal(t, "superusers", names[len(names)-1])
}

// Test: Scalar defaults come out typed
func TestExtractorRun_ScalarDefaults(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	sasl := fixtureProperty(t, doc, "enable_sasl")
	assert.Equal(t, "boolean", sasl.Type)
	assert.Equal(t, "cluster/configuration.h", sasl.DefinedIn)
	assert.False(t, sasl.NeedsRestart)
	assert.Equal(t, "user", sasl.Visibility)
	v, ok := sasl.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, false, v)

	rate := fixtureProperty(t, doc, "kafka_quota_balancer_rate")
	assert.Equal(t, "number", rate.Type)
	v, ok = rate.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, 0.2, v)

	segment := fixtureProperty(t, doc, "log_segment_size")
	assert.Equal(t, "integer", segment.Type)
	v, ok = segment.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, int64(134217728), v)
	assert.Equal(t, int64(math.MinInt64), segment.Minimum)
	assert.Equal(t, int64(math.MaxInt64), segment.Maximum)

	backlog := fixtureProperty(t, doc, "compaction_ctrl_backlog")
	v, ok = backlog.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, int64(500), v)
	assert.Equal(t, int64(0), backlog.Minimum)
	assert.Equal(t, int64(65535), backlog.Maximum)

	cacheDir := fixtureProperty(t, doc, "cloud_storage_cache_directory")
	assert.Equal(t, "string", cacheDir.Type)
	v, ok = cacheDir.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "/var/lib/propcache", v)
}

// Test: Unsigned 64-bit defaults serialize without float rounding
func TestExtractorRun_Uint64Exactness(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	share := fixtureProperty(t, doc, "kafka_memory_share_max")
	v, ok := share.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), v)
	assert.Equal(t, uint64(math.MaxUint64), share.Maximum)

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"default": 18446744073709551615`)
	assert.NotContains(t, string(data), "1.8446744073709552e+19")
}

// Test: Duration defaults render human readable with unit-width bounds
func TestExtractorRun_DurationProperties(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	debounce := fixtureProperty(t, doc, "fetch_reads_debounce_timeout")
	assert.Equal(t, "integer", debounce.Type)
	v, ok := debounce.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "150 milliseconds", v)
	assert.Equal(t, int64(-17592186044416), debounce.Minimum)
	assert.Equal(t, int64(17592186044415), debounce.Maximum)

	retention := fixtureProperty(t, doc, "log_retention_period")
	v, ok = retention.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "2 weeks", v)
	assert.Equal(t, int64(-2097152), retention.Minimum)
	assert.Equal(t, int64(2097151), retention.Maximum)

	retentionMs := fixtureProperty(t, doc, "log_retention_ms")
	assert.True(t, retentionMs.Nullable)
	v, ok = retentionMs.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "10080 minutes", v)
	assert.Equal(t, []string{"delete_retention_ms"}, retentionMs.Aliases)
	require.NotNil(t, retentionMs.GetsRestored)
	assert.False(t, *retentionMs.GetsRestored)
}

// Test: Array and object properties shape their defaults accordingly
func TestExtractorRun_ArraysAndObjects(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	superusers := fixtureProperty(t, doc, "superusers")
	assert.Equal(t, "array", superusers.Type)
	require.NotNil(t, superusers.Items)
	assert.Equal(t, "string", superusers.Items.Type)
	assert.False(t, superusers.HasDefault())

	topics := fixtureProperty(t, doc, "kafka_nodelete_topics")
	assert.Equal(t, "array", topics.Type)
	v, ok := topics.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, []string{"__audit", "__consumer_offsets"}, v)

	addr := fixtureProperty(t, doc, "rpc_server_address")
	assert.Equal(t, "object", addr.Type)
	v, ok = addr.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"address": "127.0.0.1", "port": int64(33145)}, v)
}

// Test: Enterprise properties classify into the three constructor shapes
func TestExtractorRun_EnterpriseClassification(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	balancing := fixtureProperty(t, doc, "core_balancing_continuous")
	assert.True(t, balancing.IsEnterprise)
	assert.Equal(t, property.EnterpriseRestrictedOnly, balancing.EnterpriseConstructor)
	assert.Equal(t, []string{"true"}, balancing.EnterpriseRestrictedValue)
	assert.Empty(t, balancing.EnterpriseSanctionedValue)
	v, ok := balancing.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, false, v)

	autobalancing := fixtureProperty(t, doc, "partition_autobalancing_mode")
	assert.Equal(t, property.EnterpriseRestrictedWithSanctioned, autobalancing.EnterpriseConstructor)
	assert.Equal(t, []string{"continuous"}, autobalancing.EnterpriseRestrictedValue)
	assert.Equal(t, []string{"node_add"}, autobalancing.EnterpriseSanctionedValue)
	v, ok = autobalancing.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "continuous", v)

	recovery := fixtureProperty(t, doc, "recovery_topic_validation_mode")
	assert.Equal(t, property.EnterpriseRestrictedOnly, recovery.EnterpriseConstructor)
	assert.Equal(t, []string{"compat", "redpanda"}, recovery.EnterpriseRestrictedValue)
	assert.Empty(t, recovery.EnterpriseSanctionedValue)
	v, ok = recovery.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "none", v)

	kerberos := fixtureProperty(t, doc, "sasl_kerberos_principal")
	assert.Equal(t, property.EnterpriseSimple, kerberos.EnterpriseConstructor)
	assert.Empty(t, kerberos.EnterpriseRestrictedValue)
	assert.True(t, kerberos.Nullable)
	v, ok = kerberos.DefaultValue()
	require.True(t, ok)
	assert.Nil(t, v)

	plain := fixtureProperty(t, doc, "enable_sasl")
	assert.False(t, plain.IsEnterprise)
	assert.Empty(t, plain.EnterpriseConstructor)
}

// Test: Deprecated, experimental, and metadata-driven fields are set
func TestExtractorRun_FlagsAndMetadata(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	admin := fixtureProperty(t, doc, "enable_admin_api")
	assert.True(t, admin.IsDeprecated)
	assert.Empty(t, admin.Type)

	cloudTopics := fixtureProperty(t, doc, "development_enable_cloud_topics")
	assert.True(t, cloudTopics.IsExperimental)
	assert.False(t, cloudTopics.IsDeprecated)

	legacy := fixtureProperty(t, doc, "legacy_group_offset_retention_enabled")
	assert.True(t, legacy.IsDeprecated)
	assert.Equal(t, "deprecated", legacy.Visibility)
	v, ok := legacy.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, true, v)

	region := fixtureProperty(t, doc, "cloud_storage_region")
	assert.True(t, region.Nullable)
	assert.False(t, region.IsSecret)
	v, ok = region.DefaultValue()
	require.True(t, ok)
	assert.Nil(t, v)

	mechanism := fixtureProperty(t, doc, "sasl_mechanism")
	assert.Contains(t, mechanism.Description, `"enable_sasl"`)

	connections := fixtureProperty(t, doc, "kafka_connections_max")
	assert.Equal(t, "2048", connections.Example)
	assert.Contains(t, connections.Description, "Maximum number of Kafka client connections")
}

// Test: The node tree contributes its own records
func TestExtractorRun_NodeProperties(t *testing.T) {
	t.Parallel()

	doc, _ := extractFixtureTree(t, 0)

	devMode := fixtureProperty(t, doc, "developer_mode")
	assert.Equal(t, "node/node_config.h", devMode.DefinedIn)
	assert.Equal(t, "tunable", devMode.Visibility)
	assert.True(t, devMode.NeedsRestart)

	dataDir := fixtureProperty(t, doc, "data_directory")
	assert.Equal(t, "string", dataDir.Type)
	assert.False(t, dataDir.HasDefault())

	nodeID := fixtureProperty(t, doc, "node_id")
	assert.True(t, nodeID.Nullable)
	assert.Equal(t, "integer", nodeID.Type)
	assert.Equal(t, int64(math.MinInt32), nodeID.Minimum)
	assert.Equal(t, int64(math.MaxInt32), nodeID.Maximum)

	rpcPort := fixtureProperty(t, doc, "rpc_port")
	assert.Equal(t, int64(0), rpcPort.Minimum)
	assert.Equal(t, int64(65535), rpcPort.Maximum)
	v, ok := rpcPort.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, int64(33145), v)
}

// Test: Two runs produce byte-identical documents
func TestExtractorRun_Idempotent(t *testing.T) {
	t.Parallel()

	first, _ := extractFixtureTree(t, 0)
	second, _ := extractFixtureTree(t, 0)

	a, err := first.Marshal()
	require.NoError(t, err)
	b, err := second.Marshal()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// Test: Worker count does not change the output
func TestExtractorRun_WorkerCountInvariant(t *testing.T) {
	t.Parallel()

	serial, serialStats := extractFixtureTree(t, 1)
	parallel, parallelStats := extractFixtureTree(t, 8)

	a, err := serial.Marshal()
	require.NoError(t, err)
	b, err := parallel.Marshal()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, serialStats.PropertiesEmitted, parallelStats.PropertiesEmitted)
}

// Test: Missing source path fails construction
func TestExtractor_MissingSourcePath(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")
	resolver, err := resolve.New(fixtureTree, resolve.Options{})
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	ex, err := New(missing, resolver, Options{})
	assert.Error(t, err)
	assert.Nil(t, ex)
}

// Test: A tree without pairs returns ErrNoPairs
func TestExtractorRun_NoPairs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSourceFile(t, root, "lonely.h")

	resolver, err := resolve.New(root, resolve.Options{})
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	ex, err := New(root, resolver, Options{Recursive: true})
	require.NoError(t, err)

	_, _, err = ex.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoPairs)
}

// Test: WriteDocument creates parent directories and writes atomically
func TestWriteDocument_File(t *testing.T) {
	t.Parallel()

	doc := property.NewDocument()
	rec := property.NewRecord()
	rec.Name = "sample"
	rec.DefinedIn = "sample.h"
	doc.Add(rec)

	path := filepath.Join(t.TempDir(), "out", "properties.json")
	require.NoError(t, WriteDocument(doc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := doc.Marshal()
	require.NoError(t, err)
	assert.Equal(t, expected, data)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "properties.json", entries[0].Name())
}
