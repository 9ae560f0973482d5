package macro

import (
	"fmt"
	"html"
	"path"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/character"
	"git.home.luguber.info/inful/framedoc/internal/input"
	"git.home.luguber.info/inful/framedoc/internal/strutil"
)

// Builtins returns a registry with the standard macro set. Order matters:
// note and url run before the reference macros so that their display text may
// itself contain references.
func Builtins() *Registry {
	r, err := NewRegistry(
		Macro{Name: "note", Params: []Param{{"text", true}, {"display", true}}, Handler: noteMacro},
		Macro{Name: "url", Params: []Param{{"url", true}, {"alt", true}, {"text", true}, {"external", false}}, Handler: urlMacro},
		Macro{Name: "img", Params: []Param{{"path", true}, {"alt", true}, {"note", false}}, Handler: imgMacro},
		Macro{Name: "refOther", Params: []Param{{"character", true}, {"id", true}, {"charaText", false}, {"moveText", false}, {"buttons", false}, {"sep", false}}, Handler: refOtherMacro},
		Macro{Name: "ref", Params: []Param{{"id", true}, {"text", false}, {"buttons", false}, {"sep", false}}, Handler: refMacro},
		Macro{Name: "btn", Params: []Param{{"text", true}, {"buttons", false}, {"sep", false}}, Handler: btnMacro},
		Macro{Name: "auto", Params: []Param{{"input", true}}, Handler: autoMacro},
	)
	if err != nil {
		panic(err) // static table
	}
	return r
}

func arg(args []Value, i int) string {
	if i < len(args) {
		return args[i].String()
	}
	return ""
}

// buttonsArg accepts a list or a button string such as "SH".
func buttonsArg(args []Value, i int) []string {
	if i >= len(args) || args[i].IsEmpty() {
		return nil
	}
	if args[i].Kind == KindList {
		return args[i].Strings()
	}
	return input.ParseButtons(args[i].Text)
}

// reference resolves the anchor and coloured label for a move of chara.
func reference(ctx *Context, chara *character.Character, id, text string, buttons []string, sep string) (anchor, label string) {
	var move *character.Move
	if chara != nil {
		move, _ = chara.FindMove(id)
	}

	anchor = strutil.SafeID(id)
	if move != nil {
		anchor = move.AnchorID()
		if sep == "" {
			sep = move.Sep()
		}
		if text == "" {
			text = move.Name
			if text == "" {
				text = strings.Join(move.InputList(), sep)
			}
		}
		if buttons == nil {
			buttons = move.ButtonList()
		}
	} else if text == "" || buttons == nil {
		owner := ""
		if chara != nil {
			owner = chara.Name
		}
		ctx.logger().Warn("Could not find referenced move", "id", id, "in", owner)
	}
	if sep == "" {
		sep = input.DefaultSeparator
	}
	if text == "" {
		text = id
	}
	return anchor, input.RenderString(text, buttons, sep, false)
}

func refMacro(ctx *Context, args []Value) string {
	anchor, label := reference(ctx, ctx.character(), arg(args, 0), arg(args, 1), buttonsArg(args, 2), arg(args, 3))
	return fmt.Sprintf(`<a href="#%s" class=ref>%s</a>`, anchor, label)
}

func refOtherMacro(ctx *Context, args []Value) string {
	name, id := arg(args, 0), arg(args, 1)
	charaText, moveText := arg(args, 2), arg(args, 3)

	var other *character.Character
	if ctx != nil && ctx.Roster != nil {
		other, _ = ctx.Roster.Find(name)
	}
	if other == nil {
		ctx.logger().Warn("Could not find referenced character", "name", name, "id", id)
		if charaText == "" {
			charaText = name
		}
		if moveText == "" {
			moveText = id
		}
		return strings.TrimSpace(charaText + " " + moveText)
	}

	if charaText == "" {
		charaText = other.Name
	}
	page := "./" + other.Slug() + ".html"
	anchor, label := reference(ctx, other, id, moveText, buttonsArg(args, 4), arg(args, 5))
	return fmt.Sprintf(`<a href="%s" class=ref-chara>%s</a> <a href="%s#%s" class=ref>%s</a>`,
		page, charaText, page, anchor, label)
}

func btnMacro(ctx *Context, args []Value) string {
	text := arg(args, 0)
	buttons := buttonsArg(args, 1)
	sep := arg(args, 2)

	if buttons == nil {
		if chara := ctx.character(); chara != nil {
			if move, ok := chara.FindByName(text); ok {
				buttons = move.ButtonList()
				if sep == "" {
					sep = move.Sep()
				}
			}
		}
		if buttons == nil {
			ctx.logger().Warn("Could not infer buttons", "text", text)
		}
	}
	if sep == "" {
		sep = input.DefaultSeparator
	}
	if len(buttons) <= 1 {
		return fmt.Sprintf(`<em class=btn button="%s">%s</em>`, input.Colour(buttons, 0), text)
	}
	return `<em class=btn>` + input.RenderString(text, buttons, sep, false) + `</em>`
}

func autoMacro(_ *Context, args []Value) string {
	return input.RenderAuto(arg(args, 0))
}

func isExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") || strings.HasPrefix(target, "//")
}

func urlMacro(ctx *Context, args []Value) string {
	target, alt, text := arg(args, 0), arg(args, 1), arg(args, 2)
	external := isExternal(target)
	if len(args) > 3 && args[3].Kind == KindBool {
		external = args[3].Bool()
	}

	if external {
		return fmt.Sprintf(`<a href="%s" title="%s" target=_blank rel=noopener>%s</a>`,
			target, html.EscapeString(alt), text)
	}

	local := target
	if i := strings.IndexAny(local, "#?"); i >= 0 {
		local = local[:i]
	}
	if local != "" && ctx != nil && !ctx.exists(path.Join(ctx.PageDir, local)) {
		ctx.logger().Warn("Could not find linked page", "url", target)
	}
	return fmt.Sprintf(`<a href="%s" title="%s">%s</a>`, target, html.EscapeString(alt), text)
}

func imgMacro(ctx *Context, args []Value) string {
	file, alt, note := arg(args, 0), arg(args, 1), arg(args, 2)
	rel := path.Join("images", ctx.slug(), file)
	if !ctx.exists(rel) {
		ctx.logger().Warn("Could not find requested image", "path", file)
	}

	out := fmt.Sprintf(`<img src="../%s" alt="%s" title="%s">`, rel, html.EscapeString(alt), html.EscapeString(file))
	if note != "" {
		out += `<span class=image-note>` + note + `</span>`
	}
	return out
}

func noteMacro(_ *Context, args []Value) string {
	return fmt.Sprintf(`<span class=note title="%s">%s</span>`, html.EscapeString(arg(args, 0)), arg(args, 1))
}
