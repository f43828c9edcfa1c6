package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	fallback := GetCatalog("missing-locale")
	if fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to use en-US catalog")
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if got := cat.Format("code", nil); got != "hello " {
		t.Fatalf("expected missing metadata to render empty, got %q", got)
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestFormatBaseMessages(t *testing.T) {
	cat := GetCatalog(BaseLocale)
	got := cat.Format(CodeLocationBlocked, map[string]string{"x": "0", "y": "4"})
	if got != "(0, 4) is an obstacle" {
		t.Fatalf("unexpected message %q", got)
	}
	for _, code := range []Code{
		CodeLocationOutOfBounds, CodeLocationBlocked, CodeCellEmpty, CodeHPOutOfRange,
		CodeTeamInvalid, CodeTurnOutOfRange, CodePlanStale, CodeRecipeInvalid,
	} {
		if !cat.Has(code) {
			t.Errorf("missing message for %s", code)
		}
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
	if custom.Locale() != "custom" {
		t.Fatalf("unexpected locale %q", custom.Locale())
	}
}

func TestGetCatalogMatchesLanguage(t *testing.T) {
	brazil := NewCatalog("pt-BR", map[Code]string{CodeCellEmpty: "Nenhum robô em ({{.x}}, {{.y}})"})
	RegisterCatalog("pt-BR", brazil)

	if got := GetCatalog("pt"); got != brazil {
		t.Fatalf("expected pt to match pt-BR, got %q", got.Locale())
	}
	if got := GetCatalog("en-GB"); got.Locale() != BaseLocale {
		t.Fatalf("expected en-GB to match en-US, got %q", got.Locale())
	}
}
