package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/config"
)

func TestCreateHandler(t *testing.T) {
	t.Parallel()

	factory := NewSourceHandlerFactory(10*time.Second, 2)

	tests := []struct {
		sourceType string
		wantErr    bool
	}{
		{config.SourceTypeGit, false},
		{config.SourceTypeHTTP, false},
		{config.SourceTypeFile, false},
		{"configmap", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("type_"+tt.sourceType, func(t *testing.T) {
			t.Parallel()

			handler, err := factory.CreateHandler(tt.sourceType)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, handler)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, handler)
		})
	}
}
