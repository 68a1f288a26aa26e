package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/wallproof/internal/config"
	"github.com/kozaktomas/wallproof/internal/imagestore"
	"github.com/kozaktomas/wallproof/internal/proof"
)

// newRenderers builds the proof renderer and its debug-overlay twin from
// the loaded configuration.
func newRenderers(cfg *config.Config) (*proof.Renderer, *proof.Renderer) {
	fetcher := imagestore.NewFetcher(time.Duration(cfg.Assets.FetchTimeoutMS) * time.Millisecond)
	store := imagestore.NewStore(cfg.Assets.Root, cfg.Assets.BaseURL, fetcher)

	opts := []proof.Option{
		proof.WithImageSource(store),
		proof.WithPlatformPredicate(imagestore.HostMatcher(cfg.Assets.PlatformHosts)),
		proof.WithBaseURL(cfg.Assets.BaseURL),
		proof.WithLayoutConfig(cfg.Proof.Layout),
		proof.WithTexts(cfg.Proof.Texts),
		proof.WithDisclaimerTexts(cfg.Proof.Disclaimer),
		proof.WithStyle(cfg.Proof.Style),
		proof.WithRasterDPI(cfg.Proof.RasterDPI),
		proof.WithStripWidth(cfg.Proof.StripWidthCm),
		proof.WithBackendFactory(proof.FPDFFactory(proof.FPDFOptions{
			FontPath:     cfg.Proof.FontPath,
			BoldFontPath: cfg.Proof.BoldFontPath,
			Title:        cfg.Proof.Texts.Title,
		})),
	}
	if cfg.Proof.LogoPath != "" {
		data, err := os.ReadFile(cfg.Proof.LogoPath)
		if err != nil {
			fmt.Printf("Warning: failed to read logo %s, proofs render without it: %v\n", cfg.Proof.LogoPath, err)
		} else {
			opts = append(opts, proof.WithLogo(data))
		}
	}

	return proof.NewRenderer(opts...), proof.NewRenderer(append(opts, proof.WithDebugOverlay(true))...)
}
