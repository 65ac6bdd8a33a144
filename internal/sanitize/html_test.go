package sanitize

import (
	"strings"
	"testing"
)

func TestFragment_KeepsAllowedMarkup(t *testing.T) {
	input := "<ul><li><span class='bg-green-50 text-green-800 px-1 rounded'>Alert</span> and calm</li><li>Ate <strong>well</strong></li></ul>"
	want := `<ul><li><span class="bg-green-50 text-green-800 px-1 rounded">Alert</span> and calm</li><li>Ate <strong>well</strong></li></ul>`
	if got := Fragment(input); got != want {
		t.Errorf("Fragment:\ngot  %q\nwant %q", got, want)
	}
}

func TestFragment_StripsDangerousContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script", `<ul><li>ok</li></ul><script>alert(1)</script>`, `<ul><li>ok</li></ul>`},
		{"event handler", `<li onclick="steal()">ok</li>`, `<li>ok</li>`},
		{"img", `<li>pic <img src=x onerror=alert(1)></li>`, `<li>pic </li>`},
		{"link text kept", `<li><a href="javascript:x()">click</a></li>`, `<li>click</li>`},
		{"style attr on span", `<span style="color:red" class="x">t</span>`, `<span class="x">t</span>`},
		{"bad class", `<span class="a&quot;b">t</span>`, `<span>t</span>`},
		{"comment", `<li>a<!-- hidden -->b</li>`, `<li>ab</li>`},
		{"text escaped", `<li>1 &lt; 2 & 3</li>`, `<li>1 &lt; 2 &amp; 3</li>`},
		{"break", `line<br>next`, `line<br />next`},
		{"plain N/A", `N/A`, `N/A`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fragment(tt.input); got != tt.want {
				t.Errorf("Fragment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlatten_Plain(t *testing.T) {
	input := "<ul>\n  <li>First   observation</li>\n  <li><span class='bg-green-50'>Important</span> note</li>\n</ul>"
	want := "- First observation\n- Important note"
	if got := Flatten(input, Plain); got != want {
		t.Errorf("Flatten:\ngot  %q\nwant %q", got, want)
	}
}

func TestFlatten_Markdown(t *testing.T) {
	input := "<ul><li><span class='bg-green-50 text-green-800'>Took meds</span> on time</li><li><em>Tired</em> &amp; quiet</li></ul>"
	want := "- **Took meds** on time\n- _Tired_ & quiet"
	if got := Flatten(input, Markdown); got != want {
		t.Errorf("Flatten:\ngot  %q\nwant %q", got, want)
	}
}

func TestFlatten_DropsScript(t *testing.T) {
	got := Flatten("<p>Visible</p><script>document.cookie</script>", Plain)
	if got != "Visible" {
		t.Errorf("Flatten = %q", got)
	}
}

func TestFlatten_PlainText(t *testing.T) {
	if got := Flatten("N/A", Plain); got != "N/A" {
		t.Errorf("Flatten = %q", got)
	}
	if got := Flatten("", Plain); got != "" {
		t.Errorf("Flatten empty = %q", got)
	}
	if got := Flatten("<p>one</p><p>two</p>", Plain); !strings.Contains(got, "one\ntwo") {
		t.Errorf("Flatten paragraphs = %q", got)
	}
}
