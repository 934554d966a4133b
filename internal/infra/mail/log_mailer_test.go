package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailerHidesCodesByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, LogMailer{Logger: logger}.SendVerificationCode(context.Background(), "ana@example.com", "123456"))
	assert.Contains(t, buf.String(), "ana@example.com")
	assert.NotContains(t, buf.String(), "123456")

	buf.Reset()
	require.NoError(t, LogMailer{Logger: logger, RevealCodes: true}.SendVerificationCode(context.Background(), "ana@example.com", "123456"))
	assert.Contains(t, buf.String(), "code=123456")
}
