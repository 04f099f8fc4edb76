package cpp

// Test Plan:
// 1. Member-initializer walk over a realistic definition file
// 2. Leading *this dropped, function pointers kept
// 3. String handling: escapes, adjacent-literal folding
// 4. Metadata blobs flattened into designator mappings (argument and
//    compound-literal forms)
// 5. Literal kinds: numbers, user-defined literals, bools, calls,
//    identifiers, brace lists

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdoc/propdoc/internal/property"
)

const clusterSource = "../../../testdata/cpp/cluster/configuration.cc"

func TestExtractArgumentsClusterSource(t *testing.T) {
	t.Parallel()

	args, err := ExtractArguments(context.Background(), clusterSource)
	require.NoError(t, err)

	params := args["enable_sasl"]
	require.Len(t, params, 4, "*this must be dropped")
	assert.Equal(t, property.KindString, params[0].Kind)
	assert.Equal(t, "enable_sasl", params[0].Value)
	assert.Equal(t, property.KindString, params[1].Kind)
	assert.True(t, params[2].IsDesignated())
	assert.Equal(t, property.KindBool, params[3].Kind)
	assert.Equal(t, "false", params[3].Value)

	meta := params[2].Fields
	require.Contains(t, meta, "needs_restart")
	assert.Equal(t, property.KindIdentifier, meta["needs_restart"].Kind)
	assert.Equal(t, "needs_restart::no", meta["needs_restart"].Value)
	assert.Equal(t, "visibility::user", meta["visibility"].Value)
}

func TestExtractArgumentsStringHandling(t *testing.T) {
	t.Parallel()

	args, err := ExtractArguments(context.Background(), clusterSource)
	require.NoError(t, err)

	escaped := args["sasl_mechanism"]
	require.GreaterOrEqual(t, len(escaped), 2)
	assert.Equal(t, `The SASL mechanism to use when the "enable_sasl" flag is on.`, escaped[1].Value)

	folded := args["kafka_connections_max"]
	require.GreaterOrEqual(t, len(folded), 2)
	assert.Equal(t,
		"Maximum number of Kafka client connections per broker. Unlimited when unset.",
		folded[1].Value, "adjacent literals fold into one string")
}

func TestExtractArgumentsLiteralKinds(t *testing.T) {
	t.Parallel()

	args, err := ExtractArguments(context.Background(), clusterSource)
	require.NoError(t, err)

	segment := args["log_segment_size"]
	require.Len(t, segment, 5)
	assert.Equal(t, property.KindNumber, segment[3].Kind)
	assert.Equal(t, "128_MiB", segment[3].Value)
	require.True(t, segment[4].IsDesignated(), "bounds blob is designated")
	assert.Equal(t, "1_MiB", segment[4].Fields["min"].Value)

	memory := args["kafka_memory_share_max"]
	require.Len(t, memory, 4)
	assert.Equal(t, property.KindNumber, memory[3].Kind)
	assert.Equal(t, "18446744073709551615ULL", memory[3].Value)

	debounce := args["fetch_reads_debounce_timeout"]
	require.Len(t, debounce, 4)
	assert.Equal(t, property.KindCall, debounce[3].Kind)
	assert.Equal(t, "std::chrono::milliseconds(150)", debounce[3].Value)

	retention := args["log_retention_ms"]
	require.Len(t, retention, 4)
	assert.Equal(t, property.KindNumber, retention[3].Kind, "chrono literal suffix")
	assert.Equal(t, "10080min", retention[3].Value)

	region := args["cloud_storage_region"]
	assert.Equal(t, property.KindIdentifier, region[len(region)-1].Kind)
	assert.Equal(t, "std::nullopt", region[len(region)-1].Value)

	cacheDir := args["cloud_storage_cache_directory"]
	assert.Equal(t, property.KindIdentifier, cacheDir[len(cacheDir)-1].Kind)
	assert.Equal(t, "defaults::cache_dir", cacheDir[len(cacheDir)-1].Value)

	address := args["rpc_server_address"]
	assert.Equal(t, property.KindCall, address[len(address)-1].Kind)
	assert.Equal(t, `net::unresolved_address("127.0.0.1", 33145)`, address[len(address)-1].Value)

	rate := args["kafka_quota_balancer_rate"]
	assert.Equal(t, property.KindNumber, rate[len(rate)-1].Kind)
	assert.Equal(t, "0.2", rate[len(rate)-1].Value)
}

func TestExtractArgumentsBraceLists(t *testing.T) {
	t.Parallel()

	args, err := ExtractArguments(context.Background(), clusterSource)
	require.NoError(t, err)

	empty := args["superusers"]
	last := empty[len(empty)-1]
	assert.Equal(t, property.KindInitializer, last.Kind)
	assert.Equal(t, "{}", last.Value)
	assert.False(t, last.IsDesignated())

	topics := args["kafka_nodelete_topics"]
	last = topics[len(topics)-1]
	assert.Equal(t, property.KindInitializer, last.Kind)
	assert.Equal(t, `{"__audit", "__consumer_offsets"}`, last.Value)
	assert.Nil(t, last.Fields)

	aliases := args["log_retention_ms"][2]
	require.True(t, aliases.IsDesignated())
	assert.Equal(t, property.KindInitializer, aliases.Fields["aliases"].Kind)
	assert.Equal(t, `{"delete_retention_ms"}`, aliases.Fields["aliases"].Value)
	assert.Equal(t, "gets_restored::no", aliases.Fields["gets_restored"].Value)
}

func TestExtractArgumentsEnterpriseShapes(t *testing.T) {
	t.Parallel()

	args, err := ExtractArguments(context.Background(), clusterSource)
	require.NoError(t, err)

	continuous := args["core_balancing_continuous"]
	require.Len(t, continuous, 5)
	assert.Equal(t, property.KindInitializer, continuous[0].Kind)
	assert.Equal(t, `std::vector<ss::sstring>{"true"}`, continuous[0].Value)
	assert.False(t, continuous[0].IsDesignated())
	assert.Equal(t, "core_balancing_continuous", continuous[1].Value)
	require.True(t, continuous[3].IsDesignated(), "compound-literal metadata blob")
	assert.Equal(t, "needs_restart::no", continuous[3].Fields["needs_restart"].Value)

	autobalance := args["partition_autobalancing_mode"]
	require.Len(t, autobalance, 6)
	assert.Equal(t, property.KindIdentifier, autobalance[0].Kind)
	assert.Equal(t, "model::partition_autobalancing_mode::continuous", autobalance[0].Value)
	assert.Equal(t, "model::partition_autobalancing_mode::node_add", autobalance[1].Value)

	validation := args["recovery_topic_validation_mode"]
	require.Len(t, validation, 6)
	assert.Equal(t, property.KindInitializer, validation[0].Kind)
	assert.Equal(t, property.KindInitializer, validation[1].Kind)

	kerberos := args["sasl_kerberos_principal"]
	require.Len(t, kerberos, 5)
	assert.Equal(t, property.KindPointer, kerberos[0].Kind)
	assert.Equal(t, "&validate_kerberos_mapping", kerberos[0].Value)
}

func TestExtractArgumentsNonPropertyMembers(t *testing.T) {
	t.Parallel()

	args, err := ExtractArguments(context.Background(), clusterSource)
	require.NoError(t, err)

	// The walk records every member initializer; pairing against the
	// declarations decides which survive.
	assert.Contains(t, args, "_startup_delay")
	assert.Contains(t, args, "_state")
	assert.Empty(t, args["_state"])

	minimal := args["enable_admin_api"]
	require.Len(t, minimal, 1)
	assert.Equal(t, "enable_admin_api", minimal[0].Value)
}
