package panel

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/evcraddock/comment-panel/internal/comment"
)

// BuildFilterCriteria reads the current filter control values. Nothing is
// validated; a missing control or empty value gives an empty field.
func (p *Page) BuildFilterCriteria() comment.FilterCriteria {
	p.mu.Lock()
	defer p.mu.Unlock()

	return comment.FilterCriteria{
		MaxCount:  p.controlValue(comment.ParamNumComments),
		SortField: comment.SortField(p.controlValue(comment.ParamSortValue)),
		SortOrder: comment.SortOrder(p.controlValue(comment.ParamSortOrder)),
	}
}

// SetFilterControls selects the given values in the filter controls, as if the
// visitor had picked them. Empty fields leave the control untouched.
func (p *Page) SetFilterControls(f comment.FilterCriteria) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.setControlValue(comment.ParamNumComments, f.MaxCount)
	p.setControlValue(comment.ParamSortValue, string(f.SortField))
	p.setControlValue(comment.ParamSortOrder, string(f.SortOrder))
}

// controlValue returns the value of a control inside the filter panel.
// A select without a selected option reports its first option, like a browser.
func (p *Page) controlValue(id string) string {
	ctl := p.find(IDFilterPanel).Find("#" + id).First()
	if ctl.Length() == 0 {
		return ""
	}

	if ctl.Is("select") {
		opt := ctl.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = ctl.Find("option").First()
		}
		if opt.Length() == 0 {
			return ""
		}
		return optionValue(opt)
	}

	return ctl.AttrOr("value", "")
}

func (p *Page) setControlValue(id, value string) {
	if value == "" {
		return
	}
	ctl := p.find(IDFilterPanel).Find("#" + id).First()
	if ctl.Length() == 0 {
		return
	}

	if !ctl.Is("select") {
		ctl.SetAttr("value", value)
		return
	}

	options := ctl.Find("option")
	options.RemoveAttr("selected")
	match := options.FilterFunction(func(_ int, opt *goquery.Selection) bool {
		return optionValue(opt) == value
	}).First()
	if match.Length() > 0 {
		match.SetAttr("selected", "")
		return
	}

	// Unknown values still pass through to the backend.
	ctl.AppendHtml(`<option selected></option>`)
	added := ctl.Find("option").Last()
	added.SetAttr("value", value)
	added.SetText(value)
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}
