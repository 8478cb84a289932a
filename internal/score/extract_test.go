package score

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   float64
	}{
		{"trailing space and newline", "epoch 3 done\nAccuracy: 0.8731 \nbye\n", 0.8731},
		{"no space after marker", "Accuracy:0.5", 0.5},
		{"newline between marker and value", "Accuracy:\n  0.91\n", 0.91},
		{"integer", "Accuracy: 1", 1},
		{"exponent", "Accuracy: 8.5e-1 (val)", 0.85},
		{"negative", "Accuracy: -0.25", -0.25},
		{"first occurrence wins", "Accuracy: 0.1\nAccuracy: 0.9\n", 0.1},
		{"marker mid-line", "final Accuracy: 0.77 on test", 0.77},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.output, DefaultMarker)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestExtract_Missing(t *testing.T) {
	_, err := Extract("loss: 0.3\nprecision: 0.8\n", DefaultMarker)
	require.ErrorIs(t, err, ErrMissing)

	_, err = Extract("", DefaultMarker)
	require.ErrorIs(t, err, ErrMissing)
}

func TestExtract_Malformed(t *testing.T) {
	for _, output := range []string{
		"Accuracy: high",
		"Accuracy: 0.87%",
		"Accuracy: ",
		"Accuracy:",
		"Accuracy: 1.2.3",
		"Accuracy: nan",
		"Accuracy: --",
	} {
		_, err := Extract(output, DefaultMarker)
		require.Error(t, err, output)
		require.True(t, errors.Is(err, ErrMalformed), "%q: got %v", output, err)
	}
}

func TestExtract_CustomMarker(t *testing.T) {
	got, err := Extract("F1= 0.66\nAccuracy: 0.9", "F1=")
	require.NoError(t, err)
	require.InDelta(t, 0.66, got, 1e-12)
}

func TestExtract_EmptyMarkerUsesDefault(t *testing.T) {
	got, err := Extract("Accuracy: 0.42", "")
	require.NoError(t, err)
	require.InDelta(t, 0.42, got, 1e-12)
}
