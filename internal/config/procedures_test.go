package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcedures_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Procedures
		wantErr string
	}{
		{name: "empty", cfg: Procedures{}},
		{name: "wildcards", cfg: Procedures{Allowlist: []string{"text.*", "*"}, Unrestricted: []string{"env.*"}}},
		{name: "blank pattern ignored", cfg: Procedures{Allowlist: []string{"  "}}},
		{name: "whitespace", cfg: Procedures{Allowlist: []string{"text .upper"}}, wantErr: `allowlist: pattern "text .upper" must not contain whitespace`},
		{name: "trailing dot", cfg: Procedures{Unrestricted: []string{"env."}}, wantErr: `unrestricted: pattern "env." must not start or end with a dot`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	require.Equal(t, []string{"a.*", "b.c"}, SplitPatterns(" a.* ,, b.c "))
	require.Nil(t, SplitPatterns(""))
}
