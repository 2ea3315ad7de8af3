package cli

import (
	"encoding/json"
	"io"
	"time"

	"policyxray/internal/adapters/document"
	"policyxray/internal/adapters/llm"
	"policyxray/internal/core/classify"
	"policyxray/internal/core/enhance"
	"policyxray/internal/core/riskscan"
	perr "policyxray/internal/platform/errors"

	"github.com/spf13/cobra"
)

func (a *app) newScanCmd() *cobra.Command {
	var useAI bool

	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "Score a policy against the regex risk categories",
		Long:  "Score a policy against the regex risk categories. FILE may be text or PDF, or - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			p, err := a.loadPack()
			if err != nil {
				return err
			}

			rep := riskscan.New(p, riskscan.Options{}).Analyze(text)

			if useAI {
				b, err := a.enhanceBackend()
				if err != nil {
					return err
				}
				if b == nil {
					return perr.InvalidArgf("--ai needs a backend (set XRAY_ENHANCE_KIND or XRAY_MODEL_KIND)")
				}
				e := enhance.New(b, p, enhance.Options{Cap: a.cfg.Prefix("ENHANCE_").MayInt("CAP", enhance.DefaultCap)})
				e.Enhance(cmd.Context(), &rep)
			}

			if a.opts.JSON {
				return writeJSON(a.out, rep)
			}
			renderReport(a.out, rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useAI, "ai", false, "validate and cite matches with the enhancement backend")
	return cmd
}

func (a *app) newClassifyCmd() *cobra.Command {
	var (
		kind    string
		model   string
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Classify relevant clauses with the model backend",
		Long:  "Filter FILE to relevant lines, classify up to 10 chunks with the configured model and print the merged verdict.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			p, err := a.loadPack()
			if err != nil {
				return err
			}

			mc := a.cfg.Prefix("MODEL_")
			o := llm.OptionsFrom(mc, llm.KindOllama)
			if kind != "" {
				o.Kind = kind
			}
			if model != "" {
				o.Model = model
			}
			if baseURL != "" {
				o.BaseURL = baseURL
			}
			b, err := llm.New(o)
			if err != nil {
				return err
			}
			if b == nil {
				return perr.InvalidArgf("classify needs a model backend (--backend or XRAY_MODEL_KIND)")
			}

			s := classify.New(b, classify.Config{
				Keywords:      p.Keywords,
				MaxChunks:     mc.MayInt("MAX_CHUNKS", classify.MaxChunks),
				Concurrency:   mc.MayInt("CONCURRENCY", classify.MaxConcurrency),
				MaxChunkChars: mc.MayInt("CHUNK_CHARS", 0),
				CallTimeout:   o.TimeoutOr(120 * time.Second),
			})
			res := s.Classify(cmd.Context(), text)

			if a.opts.JSON {
				return writeJSON(a.out, map[string]any{"analysis": res.Verdict})
			}
			renderVerdict(a.out, res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "backend", "", "model backend: ollama, openai or backboard (default: XRAY_MODEL_KIND or ollama)")
	f.StringVar(&model, "model", "", "model name (default: XRAY_MODEL_MODEL)")
	f.StringVar(&baseURL, "url", "", "backend base URL (default: XRAY_MODEL_URL)")
	return cmd
}

// enhanceBackend prefers XRAY_ENHANCE_* and falls back to XRAY_MODEL_*
func (a *app) enhanceBackend() (llm.Backend, error) {
	b, err := llm.New(llm.EnhanceOptionsFrom(a.cfg.Prefix("ENHANCE_"), llm.KindNone))
	if err != nil || b != nil {
		return b, err
	}
	return llm.FromConfig(a.cfg.Prefix("MODEL_"), llm.KindNone)
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read stdin")
		}
		return string(b), nil
	}
	return document.Read(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
