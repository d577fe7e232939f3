package events

import (
	"testing"

	"github.com/solvang/webvault/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.PublishRunStarted(RunStarted{RunID: "r1"}))
	require.NoError(t, p.PublishPageBuilt(PageBuilt{TargetPath: "a.html"}))
	require.NoError(t, p.PublishRunFinished(RunFinished{New: 1}))
	require.NoError(t, p.Close())
}

func TestNewNATSPublisher_DisabledConfig(t *testing.T) {
	_, err := NewNATSPublisher(nil)
	assert.Error(t, err)

	_, err = NewNATSPublisher(&config.EventsConfig{Enabled: false, NATSURL: "nats://localhost:4222"})
	assert.Error(t, err)
}
