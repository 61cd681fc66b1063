package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "short flag with separate value",
			args:  []string{"-c", "conf.json", "-a", "localhost"},
			names: []string{"c", "config"},
			want:  []string{"-c", "conf.json"},
		},
		{
			name:  "double dash with equals",
			args:  []string{"--config=alt.json", "-a", "localhost"},
			names: []string{"c", "config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "names given with dashes are normalised",
			args:  []string{"-k", "secret"},
			names: []string{"-k"},
			want:  []string{"-k", "secret"},
		},
		{
			name:  "unknown flags and positionals ignored",
			args:  []string{"-x", "1", "--y=2", "unblock", "bob"},
			names: []string{"c", "config"},
			want:  []string{},
		},
		{
			name:  "flag without value at end is kept as-is",
			args:  []string{"-c"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "flag followed by another flag keeps no value",
			args:  []string{"-c", "-notvalue"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "multiple allowed flags keep order",
			args:  []string{"-a", ":8080", "-c", "conf.json", "--other", "x"},
			names: []string{"c", "a"},
			want:  []string{"-a", ":8080", "-c", "conf.json"},
		},
		{
			name:  "repeated allowed flag is preserved",
			args:  []string{"-c", "one.json", "-c", "two.json"},
			names: []string{"c"},
			want:  []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:  "empty args",
			args:  []string{},
			names: []string{"c"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/ventas/short.json", ConfigPath([]string{"-c", "/etc/ventas/short.json"}))
	assert.Equal(t, "/etc/ventas/long.json", ConfigPath([]string{"-config", "/etc/ventas/long.json"}))
	assert.Equal(t, "/etc/ventas/eq.json", ConfigPath([]string{"--config=/etc/ventas/eq.json"}))
	assert.Empty(t, ConfigPath([]string{"-a", ":9000", "-k", "key"}))
	assert.Equal(t, "2.json", ConfigPath([]string{"-c", "1.json", "-config", "2.json"}))
}
