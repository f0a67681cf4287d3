package project

import "testing"

func TestResolveImportPath(t *testing.T) {
	tests := []struct {
		name     string
		importer string
		spec     string
		want     string
		wantErr  bool
	}{
		{name: "sibling", importer: "src/main.shl", spec: "util.shl", want: "src/util.shl"},
		{name: "default extension", importer: "src/main.shl", spec: "lib/net", want: "src/lib/net.shl"},
		{name: "parent", importer: "src/a/b.shl", spec: "../c.shl", want: "src/c.shl"},
		{name: "dot segment", importer: "main.shl", spec: "./x.shl", want: "x.shl"},
		{name: "absolute", importer: "src/main.shl", spec: "/opt/lib.shl", want: "/opt/lib.shl"},
		{name: "windows slashes", importer: "src\\main.shl", spec: "lib\\u.shl", want: "src/lib/u.shl"},
		{name: "empty", importer: "main.shl", spec: "  ", wantErr: true},
		{name: "directory", importer: "main.shl", spec: "lib/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveImportPath(tt.importer, tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveImportPath returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ResolveImportPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"lib/util.shl":     "util",
		"deploy-tools.shl": "deploy_tools",
		"2fa.shl":          "_fa",
		"naïve.shl":        "na_ve",
	}
	for in, want := range tests {
		if got := ModuleName(in); got != want {
			t.Fatalf("ModuleName(%q) = %q, want %q", in, got, want)
		}
		if !IsValidModuleIdent(ModuleName(in)) {
			t.Fatalf("ModuleName(%q) is not an identifier", in)
		}
	}
}
