package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticSystem_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	diag := NewDiagnosticSystemWithWriters(DiagnosticWarn, &out, &errOut)

	diag.Error("bad %s", "thing")
	diag.Warn("careful")
	diag.Info("hidden")
	diag.Debug("hidden")

	assert.Equal(t, "[ERROR] bad thing\n", errOut.String())
	assert.Equal(t, "[WARN] careful\n", out.String())
}

func TestDiagnosticSystem_Phases(t *testing.T) {
	var out, errOut bytes.Buffer
	diag := NewDiagnosticSystemWithWriters(DiagnosticInfo, &out, &errOut)

	diag.Header("compiling resources")
	diag.PhaseHeader("Resources")
	diag.Indent()
	diag.PhaseItem("%s (%d routes)", "shop.Invoice", 2)
	diag.PhaseFailure("%s", "shop.Broken")
	diag.Unindent()
	diag.Unindent()
	diag.List("item")
	diag.Summary("Summary", map[string]interface{}{"routes": 2, "resources": 1})
	diag.Complete("done")

	assert.Equal(t,
		"restmeta: compiling resources\n"+
			"Resources:\n"+
			"  ✓ shop.Invoice (2 routes)\n"+
			"- item\n"+
			"\nSummary\n"+
			"   resources: 1\n"+
			"   routes: 2\n"+
			"\nrestmeta: done\n",
		out.String())
	assert.Equal(t, "  ✗ shop.Broken\n", errOut.String())
}

func TestDiagnosticSystem_Silent(t *testing.T) {
	var out, errOut bytes.Buffer
	diag := NewDiagnosticSystemWithWriters(DiagnosticSilent, &out, &errOut)

	diag.Error("nothing")
	diag.PhaseFailure("nothing")
	diag.Complete("nothing")

	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
	assert.Equal(t, DiagnosticSilent, diag.Level())
}
