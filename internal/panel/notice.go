package panel

import (
	"net/url"

	"github.com/evcraddock/comment-panel/internal/comment"
)

// ReportIfRejected shows a blocking notice when pageURL says the previous
// submission was rejected. It returns the message shown, if any.
func (p *Page) ReportIfRejected(pageURL *url.URL) (string, bool) {
	if pageURL == nil {
		return "", false
	}
	msg, ok := comment.RejectionMessage(pageURL.Query())
	if !ok {
		return "", false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	notice := p.find(IDNotice)
	notice.SetText(msg)
	notice.SetAttr("role", "alertdialog")
	notice.SetAttr("aria-modal", "true")
	notice.RemoveAttr("hidden")
	return msg, true
}

// Notice returns the text of a visible notice.
func (p *Page) Notice() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	notice := p.find(IDNotice)
	if _, hidden := notice.Attr("hidden"); hidden {
		return "", false
	}
	return notice.Text(), true
}
