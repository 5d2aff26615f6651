package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

// nextTestNamespace avoids duplicate registration on the default
// prometheus registerer across tests.
func nextTestNamespace() string {
	return fmt.Sprintf("pipeflow_test_%d", atomic.AddUint64(&collectorNamespaceSeq, 1))
}

func TestCollector_RecordsRunAndNode(t *testing.T) {
	c := NewCollector(nextTestNamespace(), zap.NewNop())

	c.RecordRun("chat", "success", 120*time.Millisecond)
	c.RecordRun("chat", "error", 5*time.Millisecond)
	c.RecordNode("llm", "success", 50*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.pipelineRunsTotal.WithLabelValues("chat", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pipelineRunsTotal.WithLabelValues("chat", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.nodeExecutionsTotal.WithLabelValues("llm", "success")))
}

func TestCollector_RecordsRetrievalAndEmbeddingFailures(t *testing.T) {
	c := NewCollector(nextTestNamespace(), zap.NewNop())

	c.RecordRetrieval("docs", "local", 3)
	c.RecordRetrieval("docs", "vector_store", 2)
	c.RecordEmbeddingFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.retrievalRequestsTotal.WithLabelValues("docs", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.retrievalRequestsTotal.WithLabelValues("docs", "vector_store")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.embeddingFailuresTotal))
}

func TestCollector_NilReceiverIsSafe(t *testing.T) {
	var c *Collector
	c.RecordRun("p", "success", time.Second)
	c.RecordNode("tool", "error", time.Second)
	c.RecordRetrieval("s", "local", 0)
	c.RecordEmbeddingFailure()
}
