package panel

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/evcraddock/comment-panel/internal/auth"
)

// ApplySessionState shows the comment form and a log-out link to a logged in
// visitor, and hides the form behind a log-in link otherwise.
func (p *Page) ApplySessionState(status *auth.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	form := p.find(IDCommentForm)
	var prompt *html.Node
	if status != nil && status.IsLoggedIn {
		form.RemoveAttr("hidden")
		prompt = loginPrompt("You are logged in. ", "Log out", status.URL)
	} else {
		form.SetAttr("hidden", "")
		url := ""
		if status != nil {
			url = status.URL
		}
		prompt = loginPrompt("Log in to leave a comment. ", "Log in", url)
	}

	area := p.find(IDLoginStatus)
	if first := area.Contents().First(); first.Length() > 0 {
		first.ReplaceWithNodes(prompt)
		return
	}
	area.AppendNodes(prompt)
}

// FormVisible reports whether the comment form is shown.
func (p *Page) FormVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, hidden := p.find(IDCommentForm).Attr("hidden")
	return !hidden
}

// LoginLink returns the text and target of the login/logout anchor.
func (p *Page) LoginLink() (text, href string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a := p.find(IDLoginStatus).Find("a").First()
	return a.Text(), a.AttrOr("href", "")
}

func loginPrompt(lead, label, href string) *html.Node {
	a := element(atom.A, "login-link", text(label))
	a.Attr = append(a.Attr, html.Attribute{Key: "href", Val: href})
	return element(atom.P, "login-prompt", text(lead), a)
}
