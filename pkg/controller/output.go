package controller

import (
	"fmt"

	"github.com/danl5/gofade/pkg/common"
	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/model"
)

// ClassList computes the class tokens handed to the rendering surface: the
// animation-name token, the caller's own tokens, the animating flag token,
// the directional in/out tokens for entire transitions, and the
// hidden/visible token.
func ClassList(cfg config.Config, status model.Status, animating bool) []string {
	tokens := make([]string, 0, len(cfg.Element.Class)+4)

	if cfg.Animation != "" {
		// opaque token, not validated here
		tokens = append(tokens, cfg.Animation)
	}
	tokens = append(tokens, cfg.Element.Class...)

	if animating {
		tokens = append(tokens, common.TokenAnimating.String())
	}
	if cfg.EntireTransition {
		if status.TowardShown() {
			tokens = append(tokens, common.TokenIn.String())
		} else {
			tokens = append(tokens, common.TokenOut.String())
		}
	}
	if status == model.StatusExited {
		tokens = append(tokens, common.TokenHidden.String())
	} else {
		tokens = append(tokens, common.TokenVisible.String())
	}

	return tokens
}

// MergeStyle merges the caller style with the computed animation duration.
// The caller style is never replaced, only extended.
func MergeStyle(cfg config.Config) map[string]string {
	style := make(map[string]string, len(cfg.Element.Style)+1)
	for k, v := range cfg.Element.Style {
		style[k] = v
	}
	style[common.StyleDuration] = fmt.Sprintf("%dms", cfg.Duration.Milliseconds())
	return style
}

// Render produces the render decision for the given state: nothing when the
// element is unmounted, otherwise the wrapped content annotated with the
// computed class list and style.
func Render(cfg config.Config, status model.Status, animating bool) model.Frame {
	if !status.Present() {
		return model.Frame{}
	}

	return model.Frame{
		Render:  true,
		Key:     cfg.Element.Key,
		Status:  status,
		Class:   ClassList(cfg, status, animating),
		Style:   MergeStyle(cfg),
		Content: cfg.Element.Content,
	}
}
