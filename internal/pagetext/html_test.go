package pagetext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLProducerRendersTablesAsPipeRows(t *testing.T) {
	input := `<html><body>
<h1>Inventory</h1>
<p>Current stock levels.</p>
<table>
<tr><th>item</th><th>qty</th></tr>
<tr><td>bolts</td><td>40</td></tr>
</table>
<script>var tracked = true;</script>
</body></html>`

	p := &HTMLProducer{}
	out, err := p.Produce(strings.NewReader(input), "stock.html")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "## Page: 1\n"))
	assert.Contains(t, out, "Inventory")
	assert.Contains(t, out, "Current stock levels.")
	// Table rows stay adjacent inside one block.
	assert.Contains(t, out, "| item | qty |\n| bolts | 40 |")
	assert.NotContains(t, out, "tracked")
}

func TestHTMLProducerHandlesMissingBody(t *testing.T) {
	p := &HTMLProducer{}
	out, err := p.Produce(strings.NewReader("<p>Fragment only.</p>"), "frag.html")

	require.NoError(t, err)
	assert.Contains(t, out, "Fragment only.")
}
