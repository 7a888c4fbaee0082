package literal

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Parse evaluates text and returns its value. Lists evaluate to tuples and
// maps to objects.
func Parse(text string) (cty.Value, error) {
	src, err := toHCL(strings.TrimSpace(text))
	if err != nil {
		return cty.NilVal, invalid(text, err.Error())
	}
	if src == "" {
		return cty.NilVal, invalid(text, "empty literal")
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "literal", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, invalid(text, diags.Error())
	}
	if err := checkLiteral(expr); err != nil {
		return cty.NilVal, invalid(text, err.Error())
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, invalid(text, diags.Error())
	}
	return val, nil
}

// ParseAs parses text and coerces the result to target.
func ParseAs(text string, target types.Type) (cty.Value, error) {
	val, err := Parse(text)
	if err != nil {
		return cty.NilVal, err
	}
	return Coerce(val, target)
}

func invalid(text, reason string) error {
	return procerr.New(procerr.TypeError, "Invalid literal `%s`: %s", text, reason)
}

// checkLiteral rejects every node that is not plain data.
func checkLiteral(expr hclsyntax.Expression) error {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return nil
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			if _, ok := part.(*hclsyntax.LiteralValueExpr); !ok {
				return fmt.Errorf("string interpolation is not allowed")
			}
		}
		return nil
	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return fmt.Errorf("operators are not allowed")
		}
		if _, ok := e.Val.(*hclsyntax.LiteralValueExpr); !ok {
			return fmt.Errorf("only numbers can be negated")
		}
		return nil
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			if err := checkLiteral(item); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			if err := checkKey(item.KeyExpr); err != nil {
				return err
			}
			if err := checkLiteral(item.ValueExpr); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.ScopeTraversalExpr:
		return fmt.Errorf("unknown identifier %q", e.Traversal.RootName())
	case *hclsyntax.FunctionCallExpr:
		return fmt.Errorf("function calls are not allowed")
	default:
		return fmt.Errorf("unsupported expression")
	}
}

func checkKey(expr hclsyntax.Expression) error {
	key, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return fmt.Errorf("unsupported map key")
	}
	switch w := key.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(w.Traversal) != 1 {
			return fmt.Errorf("map keys must be simple names")
		}
		return nil
	case *hclsyntax.TemplateExpr:
		if !w.IsStringLiteral() {
			return fmt.Errorf("map keys must be simple names")
		}
		return nil
	case *hclsyntax.LiteralValueExpr:
		return nil
	}
	return fmt.Errorf("map keys must be simple names")
}
