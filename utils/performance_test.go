package utils

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// BenchmarkOptimizeEmbedPayload measures the per-frame cost of trimming a race embed
func BenchmarkOptimizeEmbedPayload(b *testing.B) {
	embed := DerbyEmbed("  🏇 The Race is On! 🏇  ", "  `[=====>--------------]` 🏁 Comet  ", ColorRacing)
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Leader", Value: "Comet", Inline: true}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		OptimizeEmbedPayload(embed)
	}
}

// BenchmarkAnimationStartCancel measures starting and replacing sequences under one ID
func BenchmarkAnimationStartCancel(b *testing.B) {
	am := NewAnimationManager()
	defer am.CancelAll()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq := am.StartAnimation(context.Background(), "bench", func(ctx context.Context) { <-ctx.Done() })
		seq.Cancel()
		<-seq.Done()
	}
}

func TestAnimationReplacesSameID(t *testing.T) {
	am := NewAnimationManager()
	first := am.StartAnimation(context.Background(), "table", func(ctx context.Context) { <-ctx.Done() })
	second := am.StartAnimation(context.Background(), "table", func(ctx context.Context) { <-ctx.Done() })

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected first sequence to be cancelled by the second")
	}

	// The first sequence's cleanup must not unregister its replacement
	if !am.IsAnimationRunning("table") {
		t.Error("Expected replacement sequence to still be registered")
	}

	am.CancelAnimation("table")
	select {
	case <-second.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected second sequence to stop after CancelAnimation")
	}
	if am.IsAnimationRunning("table") {
		t.Error("Expected no sequence after cancel")
	}
}

func TestAnimationRecoversPanic(t *testing.T) {
	am := NewAnimationManager()
	seq := am.StartAnimation(context.Background(), "boom", func(ctx context.Context) { panic("bad frame") })

	select {
	case <-seq.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected panicking sequence to finish")
	}
	if am.IsAnimationRunning("boom") {
		t.Error("Expected panicked sequence to be unregistered")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HORSE_CATALOG", "")
	t.Setenv("RENDER_INTERVAL", "")
	t.Setenv("LOG_PRETTY", "")

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CatalogPath != "horses.json" {
		t.Errorf("Expected default catalog horses.json, got %s", cfg.CatalogPath)
	}
	if cfg.RenderInterval != DefaultRenderInterval {
		t.Errorf("Expected render interval %v, got %v", DefaultRenderInterval, cfg.RenderInterval)
	}
	if cfg.LogPretty {
		t.Error("Expected plain logging by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HORSE_CATALOG", "catalog.yaml")
	t.Setenv("RENDER_INTERVAL", "250ms")
	t.Setenv("LOG_PRETTY", "yes")

	cfg := LoadConfig()
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.CatalogPath != "catalog.yaml" {
		t.Errorf("Expected catalog.yaml, got %s", cfg.CatalogPath)
	}
	if cfg.RenderInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.RenderInterval)
	}
	if !cfg.LogPretty {
		t.Error("Expected pretty logging")
	}
}

func TestLoadConfigIgnoresBadInterval(t *testing.T) {
	t.Setenv("RENDER_INTERVAL", "soon")
	if cfg := LoadConfig(); cfg.RenderInterval != DefaultRenderInterval {
		t.Errorf("Expected fallback to %v, got %v", DefaultRenderInterval, cfg.RenderInterval)
	}
}
