package panel

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/evcraddock/comment-panel/internal/comment"
)

// UnavailableMessage is shown in place of the list when comments cannot be fetched.
const UnavailableMessage = "Comments are unavailable right now."

// Render replaces the comment list with the given comments, in the given order.
// Clearing an already empty list is a no-op.
func (p *Page) Render(comments []*comment.Comment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.clearList()
	for _, c := range comments {
		list.AppendNodes(p.commentNode(c))
	}
}

// ShowUnavailable clears the list and puts a non-fatal notice in its place.
func (p *Page) ShowUnavailable() {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.clearList()
	list.AppendNodes(element(atom.Li, "comments-unavailable", text(UnavailableMessage)))
}

// RenderedCount returns the number of comment nodes in the list.
func (p *Page) RenderedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.find(IDCommentsList).Find("li.comment").Length()
}

func (p *Page) clearList() *goquery.Selection {
	list := p.find(IDCommentsList)
	list.Find("li").Remove()
	return list
}

// commentNode builds:
//
//	<li class="comment">
//	  <img class="avatar" src="..." alt="">
//	  <span class="comment-author">name</span>
//	  <span class="comment-time">M-D-YYYY H:M:S</span>
//	  <p class="comment-message">message <span class="comment-score">(score)</span></p>
//	</li>
func (p *Page) commentNode(c *comment.Comment) *html.Node {
	avatar := element(atom.Img, "avatar")
	avatar.Attr = append(avatar.Attr,
		html.Attribute{Key: "src", Val: p.avatar},
		html.Attribute{Key: "alt", Val: ""},
	)

	return element(atom.Li, "comment",
		avatar,
		element(atom.Span, "comment-author", text(c.DisplayName())),
		element(atom.Span, "comment-time", text(comment.FormatTimestamp(c.Time(p.loc)))),
		element(atom.P, "comment-message",
			text(c.Message+" "),
			element(atom.Span, "comment-score", text(comment.FormatScore(c.SentimentScore))),
		),
	)
}

func element(a atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
