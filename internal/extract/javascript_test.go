package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumendocs/lumen/internal/entity"
)

// Test Plan for javascriptExtractor:
// - Extract function declarations with doc blocks and spans
// - Extract arrow functions assigned to const/let/var (paren and bare param)
// - Extract class declarations and shorthand methods with parent association
// - Split parameters on top-level commas only (defaults with nested calls)
// - Capture getter, static, and constructor methods
// - Ignore declarations inside strings and comments
// - Ignore line comments as documentation (doc blocks only)
// - Never fail on unrecognized input

const jsFixture = `/**
 * Format a money amount for display.
 */
function formatCurrency(amount, currency = 'USD') {
  return currency + ' ' + amount.toFixed(2);
}

// Not a doc block.
const add = (a, b = foo(1, 2)) => a + b;

const double = n => n * 2;

/**
 * A shopping cart holds line items.
 */
class Cart {
  constructor(owner) {
    this.owner = owner;
    this.items = [];
  }

  /**
   * Add an item to the cart.
   */
  addItem(item, quantity = 1) {
    this.items.push({ item, quantity });
  }

  get total() {
    return this.items.length;
  }

  static from(json) {
    return new Cart(json.owner);
  }
}

async function fetchCart(id) {
  const res = await fetch('/cart/' + id);
  return res.json();
}
`

func TestJavaScriptExtractor_Functions(t *testing.T) {
	t.Parallel()

	captures, err := javascriptExtractor{}.Extract(jsFixture)
	require.NoError(t, err)

	format := findCapture(t, captures, "formatCurrency")
	assert.Equal(t, entity.KindFunction, format.Kind)
	assert.Equal(t, "Format a money amount for display.", format.Doc)
	assert.Equal(t, 4, format.StartLine)
	assert.Equal(t, 6, format.EndLine)
	require.Len(t, format.Parameters, 2)
	assert.Equal(t, "amount", format.Parameters[0].Name)
	assert.Equal(t, "currency", format.Parameters[1].Name)
	assert.Equal(t, "'USD'", format.Parameters[1].Default)

	fetchFn := findCapture(t, captures, "fetchCart")
	assert.Equal(t, entity.KindFunction, fetchFn.Kind)
	assert.Equal(t, 38, fetchFn.StartLine)
	assert.Equal(t, 41, fetchFn.EndLine)
	require.Len(t, fetchFn.Parameters, 1)
	assert.Equal(t, "id", fetchFn.Parameters[0].Name)
}

func TestJavaScriptExtractor_ArrowFunctions(t *testing.T) {
	t.Parallel()

	captures, err := javascriptExtractor{}.Extract(jsFixture)
	require.NoError(t, err)

	// Nested call commas in a default must not split the list.
	add := findCapture(t, captures, "add")
	assert.Equal(t, entity.KindFunction, add.Kind)
	require.Len(t, add.Parameters, 2)
	assert.Equal(t, "a", add.Parameters[0].Name)
	assert.Equal(t, "b", add.Parameters[1].Name)
	assert.Equal(t, "foo(1, 2)", add.Parameters[1].Default)

	// Line comments are not documentation.
	assert.Empty(t, add.Doc)
	assert.Equal(t, 9, add.StartLine)
	assert.Equal(t, 9, add.EndLine)

	double := findCapture(t, captures, "double")
	require.Len(t, double.Parameters, 1)
	assert.Equal(t, "n", double.Parameters[0].Name)
}

func TestJavaScriptExtractor_ClassesAndMethods(t *testing.T) {
	t.Parallel()

	captures, err := javascriptExtractor{}.Extract(jsFixture)
	require.NoError(t, err)

	cart := findCapture(t, captures, "Cart")
	assert.Equal(t, entity.KindClass, cart.Kind)
	assert.Equal(t, "A shopping cart holds line items.", cart.Doc)
	assert.Equal(t, 16, cart.StartLine)
	assert.Equal(t, 36, cart.EndLine)

	cartPos := 0
	for i, c := range captures {
		if c.Name == "Cart" {
			cartPos = i + 1
		}
	}

	ctor := findCapture(t, captures, "constructor")
	assert.Equal(t, entity.KindMethod, ctor.Kind)
	assert.Equal(t, cartPos, ctor.Parent)
	require.Len(t, ctor.Parameters, 1)
	assert.Equal(t, "owner", ctor.Parameters[0].Name)

	addItem := findCapture(t, captures, "addItem")
	assert.Equal(t, entity.KindMethod, addItem.Kind)
	assert.Equal(t, cartPos, addItem.Parent)
	assert.Equal(t, "Add an item to the cart.", addItem.Doc)
	assert.Equal(t, 25, addItem.StartLine)
	assert.Equal(t, 27, addItem.EndLine)
	require.Len(t, addItem.Parameters, 2)
	assert.Equal(t, "quantity", addItem.Parameters[1].Name)
	assert.Equal(t, "1", addItem.Parameters[1].Default)

	total := findCapture(t, captures, "total")
	assert.Equal(t, entity.KindMethod, total.Kind)
	assert.Empty(t, total.Parameters)

	from := findCapture(t, captures, "from")
	assert.Equal(t, entity.KindMethod, from.Kind)
	assert.Equal(t, cartPos, from.Parent)
}

func TestJavaScriptExtractor_MaskedText(t *testing.T) {
	t.Parallel()

	src := `const s = "function fake(a) {";
// function nope(x) {}
function real(x) {
  return x;
}
`
	captures, err := javascriptExtractor{}.Extract(src)
	require.NoError(t, err)
	require.Len(t, captures, 1)
	assert.Equal(t, "real", captures[0].Name)
}

func TestJavaScriptExtractor_UnrecognizedInput(t *testing.T) {
	t.Parallel()

	captures, err := javascriptExtractor{}.Extract("const x = 5;\nif (x) { x++; }\n")
	require.NoError(t, err)
	assert.Empty(t, captures)
}
