package bracket

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantMutated bool
	}{
		{
			name:        "no tokens",
			input:       "<w:t>Hello World</w:t>",
			want:        "<w:t>Hello World</w:t>",
			wantMutated: false,
		},
		{
			name:        "bare identifier",
			input:       "Dear [name],",
			want:        "Dear {name},",
			wantMutated: true,
		},
		{
			name:        "dotted path",
			input:       "[a.b]",
			want:        "{a.b}",
			wantMutated: true,
		},
		{
			name:        "segment with space uses index syntax",
			input:       "[a.b c]",
			want:        `{a["b c"]}`,
			wantMutated: true,
		},
		{
			name:        "non-ascii segment stays an identifier",
			input:       "[客户.名称]",
			want:        "{客户.名称}",
			wantMutated: true,
		},
		{
			name:        "segments are trimmed",
			input:       "[order. total ]",
			want:        "{order.total}",
			wantMutated: true,
		},
		{
			name:        "bare non-identifier falls back to root index",
			input:       "[unit price]",
			want:        `{this["unit price"]}`,
			wantMutated: true,
		},
		{
			name:        "empty segment falls back to root index",
			input:       "[a..b]",
			want:        `{this["a..b"]}`,
			wantMutated: true,
		},
		{
			name:        "irregular head falls back to root index",
			input:       "[1st.value]",
			want:        `{this["1st.value"]}`,
			wantMutated: true,
		},
		{
			name:        "empty body left verbatim",
			input:       "see [] and [  ]",
			want:        "see [] and [  ]",
			wantMutated: false,
		},
		{
			name:        "loop with alias",
			input:       "[#items][name][/items]",
			want:        "{FOR item IN items}{$item.name}{END-FOR item}",
			wantMutated: true,
		},
		{
			name:        "loop over ies plural",
			input:       "[#categories][title][/categories]",
			want:        "{FOR category IN categories}{$category.title}{END-FOR category}",
			wantMutated: true,
		},
		{
			name:        "loop over ses plural",
			input:       "[#addresses][city][/addresses]",
			want:        "{FOR address IN addresses}{$address.city}{END-FOR address}",
			wantMutated: true,
		},
		{
			name:        "loop over dotted field uses last segment",
			input:       "[#order.lines][sku][/order.lines]",
			want:        "{FOR line IN order.lines}{$line.sku}{END-FOR line}",
			wantMutated: true,
		},
		{
			name:        "loop field that is not an identifier",
			input:       "[#rows][unit price][/rows]",
			want:        `{FOR row IN rows}{$row["unit price"]}{END-FOR row}`,
			wantMutated: true,
		},
		{
			name:        "dotted value inside loop stays root scoped",
			input:       "[#items][customer.name][/items]",
			want:        "{FOR item IN items}{customer.name}{END-FOR item}",
			wantMutated: true,
		},
		{
			name:        "dashed value inside loop stays root scoped",
			input:       "[#items][due-date][/items]",
			want:        `{FOR item IN items}{this["due-date"]}{END-FOR item}`,
			wantMutated: true,
		},
		{
			name:        "nested loops with colliding aliases",
			input:       "[#items][#item][name][/item][/items]",
			want:        "{FOR item IN items}{FOR item2 IN item}{$item2.name}{END-FOR item2}{END-FOR item}",
			wantMutated: true,
		},
		{
			name:        "alias released after close",
			input:       "[#items][/items][#items][/items]",
			want:        "{FOR item IN items}{END-FOR item}{FOR item IN items}{END-FOR item}",
			wantMutated: true,
		},
		{
			name:        "unmatched close falls back to body",
			input:       "[/items]",
			want:        "{END-FOR items}",
			wantMutated: true,
		},
		{
			name:        "alias falls back to item",
			input:       "[#123][/123]",
			want:        "{FOR item IN 123}{END-FOR item}",
			wantMutated: true,
		},
		{
			name:        "alias never shadows the environment handle",
			input:       "[#envs][name][/envs]",
			want:        "{FOR env2 IN envs}{$env2.name}{END-FOR env2}",
			wantMutated: true,
		},
		{
			name:        "call syntax is opaque",
			input:       "[#items][c(name, 'n/a')][/items]",
			want:        "{FOR item IN items}{c(name, 'n/a')}{END-FOR item}",
			wantMutated: true,
		},
		{
			name:        "call syntax at the root is not a key lookup",
			input:       "[fmt(total)] [customer.name]",
			want:        "{fmt(total)} {customer.name}",
			wantMutated: true,
		},
		{
			name:        "reserved word uses index syntax",
			input:       "[#rows][in][/rows]",
			want:        `{FOR row IN rows}{$row["in"]}{END-FOR row}`,
			wantMutated: true,
		},
		{
			name:        "token split by markup is not matched",
			input:       "<w:t>[na</w:t><w:t>me]</w:t>",
			want:        "<w:t>[na</w:t><w:t>me]</w:t>",
			wantMutated: false,
		},
		{
			name:        "text around tokens preserved",
			input:       `<w:p><w:r><w:t xml:space="preserve">Total: [total] CNY</w:t></w:r></w:p>`,
			want:        `<w:p><w:r><w:t xml:space="preserve">Total: {total} CNY</w:t></w:r></w:p>`,
			wantMutated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, mutated := Rewrite(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Rewrite() mismatch (-want +got):\n%s", diff)
			}
			if mutated != tt.wantMutated {
				t.Errorf("Rewrite() mutated = %v, want %v", mutated, tt.wantMutated)
			}
		})
	}
}

func TestRewriteIdempotent(t *testing.T) {
	inputs := []string{
		"[#items][name][/items]",
		"[a.b c]",
		"[#rows][unit price][/rows] [total]",
		"[odd name]",
	}
	for _, input := range inputs {
		once, mutated := Rewrite(input)
		if !mutated {
			t.Fatalf("first pass over %q reported no change", input)
		}
		twice, mutated := Rewrite(once)
		if mutated {
			t.Errorf("second pass over %q mutated: %q -> %q", input, once, twice)
		}
		if twice != once {
			t.Errorf("second pass changed text: %q -> %q", once, twice)
		}
	}
}

func TestCompilerStrictClose(t *testing.T) {
	c := &Compiler{StrictClose: true}
	input := "[name][/items]"
	got, mutated, err := c.Rewrite(input)
	if err == nil {
		t.Fatal("expected error for unmatched close")
	}
	var closeErr *UnmatchedCloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("expected UnmatchedCloseError, got %T", err)
	}
	if closeErr.Name != "items" || closeErr.Position != 6 {
		t.Errorf("unexpected error fields: %+v", closeErr)
	}
	if got != input || mutated {
		t.Errorf("strict failure should return input unchanged, got %q mutated=%v", got, mutated)
	}
}

func TestCompilerCustomSingularize(t *testing.T) {
	c := &Compiler{
		Singularize: func(name string) string {
			if name == "people" {
				return "person"
			}
			return Singularize(name)
		},
	}
	got, _, err := c.Rewrite("[#people][name][/people]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{FOR person IN people}{$person.name}{END-FOR person}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSingularize(t *testing.T) {
	tests := map[string]string{
		"items":      "item",
		"categories": "category",
		"addresses":  "address",
		"s":          "s",
		"ies":        "ie",
		"data":       "data",
		"children":   "children",
	}
	for in, want := range tests {
		if got := Singularize(in); got != want {
			t.Errorf("Singularize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"name", true},
		{"_private", true},
		{"$item", true},
		{"名称", true},
		{"a1", true},
		{"1a", false},
		{"a b", false},
		{"a-b", false},
		{"", false},
		{"in", false},
	}
	for _, tt := range tests {
		if got := IsIdentifier(tt.in); got != tt.want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRewriteLargeDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("<w:p><w:r><w:t>[#items][name][/items]</w:t></w:r></w:p>")
	}
	got, mutated := Rewrite(b.String())
	if !mutated {
		t.Fatal("expected mutation")
	}
	if n := strings.Count(got, "{FOR item IN items}"); n != 200 {
		t.Errorf("expected 200 loops, got %d", n)
	}
	if strings.Contains(got, "item2") {
		t.Error("sequential loops must reuse the released alias")
	}
}
