package views

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/editor"
)

func adminLayout(title string, body markup) templ.Component {
	var p page
	p.lit(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
	p.lit(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	p.lit(`<meta name="robots" content="noindex">`)
	p.lit(`<title>`).text(title).lit(` | Admin</title><link rel="stylesheet" href="/public/styles.css"></head>`)
	p.lit(`<body class="admin"><main class="admin-main">`).lit(body).lit(`</main></body></html>`)
	return component(p.out())
}

func (p *page) csrfField(token string) *page {
	return p.lit(`<input type="hidden" name="_csrf"`).attr("value", token).lit(`>`)
}

// postButton is a one-button form posting to action.
func (p *page) postButton(action, csrf string, label markup) *page {
	p.lit(`<form method="post"`).attr("action", action).lit(`>`).csrfField(csrf)
	return p.lit(`<button type="submit">`).lit(label).lit(`</button></form>`)
}

// AdminLogin is the password form.
func AdminLogin(showError bool, csrf string) templ.Component {
	var p page
	p.lit(`<section class="admin-login"><h1>Sign in</h1>`)
	if showError {
		p.lit(`<p class="admin-error">Wrong password.</p>`)
	}
	p.lit(`<form method="post" action="/admin/login/">`).csrfField(csrf)
	p.lit(`<label>Password <input type="password" name="password" autocomplete="current-password" required autofocus></label>`)
	p.lit(`<button type="submit">Sign in</button></form></section>`)
	return adminLayout("Sign in", p.out())
}

// AdminDashboard lists posts and open drafts.
func AdminDashboard(d Dashboard) templ.Component {
	var p page
	p.lit(`<section class="admin-dashboard"><header class="admin-bar"><h1>Posts</h1>`)
	p.postButton("/admin/drafts/", d.CSRF, "New post")
	p.lit(`<a href="/admin/images/">Images</a>`)
	p.postButton("/admin/logout/", d.CSRF, "Log out").lit(`</header>`)
	if d.Message != "" {
		p.lit(`<p class="admin-message">`).text(d.Message).lit(`</p>`)
	}
	if d.Error != "" {
		p.lit(`<p class="admin-error">`).text(d.Error).lit(`</p>`)
	}
	if len(d.Drafts) > 0 {
		p.lit(`<h2>Open drafts</h2><ul class="admin-drafts">`)
		for _, dr := range d.Drafts {
			heading := dr.Heading
			if heading == "" {
				heading = "Untitled"
			}
			p.lit(`<li><a`).attr("href", "/admin/drafts/"+PathEscape(dr.ID)+"/").lit(`>`).text(heading).lit(`</a></li>`)
		}
		p.lit(`</ul>`)
	}
	p.lit(`<table class="admin-posts"><thead><tr><th>Title</th><th>Author</th><th>Published</th><th></th></tr></thead><tbody>`)
	for _, c := range d.Posts {
		id := PathEscape(c.ID)
		p.lit(`<tr><td><a`).attr("href", PostURL(c.ID)).lit(`>`).text(c.Heading).lit(`</a></td>`)
		p.lit(`<td>`).text(c.Author).lit(`</td><td>`).text(c.Date).lit(`</td><td class="admin-actions">`)
		p.lit(`<a`).attr("href", "/admin/blogs/"+id+"/edit/").lit(`>Edit</a>`)
		p.postButton("/admin/blogs/"+id+"/delete/", d.CSRF, "Delete")
		p.lit(`</td></tr>`)
	}
	p.lit(`</tbody></table></section>`)
	return adminLayout("Posts", p.out())
}

// EditorForm renders every field of a draft. Field names follow the editor
// operations: tag.{i}, section.{s}.subheading, block.{s}.{b}.{field} and
// bullet.{s}.{b}.{i}. Buttons post an action value.
func EditorForm(e EditorPage) templ.Component {
	d := e.Draft
	var p page
	heading := "New post"
	if d.ID != "" {
		heading = "Edit post"
	}
	p.lit(`<section class="admin-editor"><h1>`).text(heading).lit(`</h1>`)
	if e.Error != "" {
		p.lit(`<p class="admin-error" role="alert">`).text(e.Error).lit(`</p>`)
	}
	if e.Message != "" {
		p.lit(`<p class="admin-message">`).text(e.Message).lit(`</p>`)
	}
	p.lit(`<form method="post"`).attr("action", "/admin/drafts/"+PathEscape(e.DraftID)+"/").lit(`>`).csrfField(e.CSRF)

	p.textField("Title", "mainHeading", d.MainHeading)
	p.textArea("Description", "description", d.Description)
	p.textField("Author", "author", d.Author)
	p.textField("Cover image URL", "coverImage", d.CoverImage)

	p.lit(`<fieldset class="editor-tags"><legend>Tags</legend>`)
	for i, t := range d.Tags {
		p.lit(`<div class="editor-row"><input type="text"`).attr("name", "tag."+strconv.Itoa(i)).attr("value", t)
		p.attr("aria-label", "Tag "+strconv.Itoa(i+1)).lit(`>`)
		p.actionButton("remove-tag:"+strconv.Itoa(i), "Remove")
		p.lit(`</div>`)
	}
	p.actionButton("add-tag", "Add tag")
	p.lit(`</fieldset>`)

	for si, s := range d.Sections {
		p.section(si, s)
	}
	p.actionButton("add-section", "Add section")

	p.textArea("Conclusion", "conclusion", d.Conclusion)

	p.lit(`<div class="editor-actions">`)
	p.actionButton("apply", "Update form")
	p.actionButton("save", "Save")
	if d.ID != "" {
		p.actionButton("delete", "Delete post")
	}
	p.actionButton("discard", "Discard")
	p.lit(`</div></form>`)

	if len(e.Images) > 0 {
		p.lit(`<aside class="editor-images"><h2>Image library</h2><ul>`)
		for _, img := range e.Images {
			p.lit(`<li><img`).attr("src", img.URL()).lit(` alt="" loading="lazy"><code>`).text(img.URL()).lit(`</code></li>`)
		}
		p.lit(`</ul></aside>`)
	}
	p.lit(`</section>`)
	return adminLayout(heading, p.out())
}

func (p *page) section(si int, s editor.DraftSection) {
	sIdx := strconv.Itoa(si)
	p.lit(`<fieldset class="editor-section"><legend>Section `).num(si + 1).lit(`</legend>`)
	p.textField("Subheading", "section."+sIdx+".subheading", s.Subheading)
	for bi, blk := range s.Blocks {
		prefix := fmt.Sprintf("block.%d.%d.", si, bi)
		remove := fmt.Sprintf("remove-block:%d:%d", si, bi)
		if blk.Unsupported() {
			p.lit(`<div class="editor-block editor-unsupported"><p>Unsupported block <code>`).text(string(blk.Type))
			p.lit(`</code>. It is kept unchanged when the post is saved.</p>`)
			p.actionButton(remove, "Remove block")
			p.lit(`</div>`)
			continue
		}
		p.lit(`<div class="editor-block"><select`).attr("name", prefix+"type").lit(` aria-label="Block type">`)
		for _, t := range []content.BlockType{content.BlockParagraph, content.BlockBullet, content.BlockImage} {
			p.lit(`<option`).attr("value", string(t))
			if blk.Type == t {
				p.lit(` selected`)
			}
			p.lit(`>`).text(string(t)).lit(`</option>`)
		}
		p.lit(`</select>`)
		switch blk.Type {
		case content.BlockBullet:
			p.lit(`<ul class="editor-bullets">`)
			for k, item := range blk.Bullets {
				p.lit(`<li><input type="text"`).attr("name", fmt.Sprintf("bullet.%d.%d.%d", si, bi, k)).attr("value", item)
				p.attr("aria-label", "Bullet "+strconv.Itoa(k+1)).lit(`></li>`)
			}
			p.lit(`</ul>`)
		case content.BlockImage:
			p.lit(`<input type="url"`).attr("name", prefix+"imageUrl").attr("value", blk.ImageURL).lit(` aria-label="Image URL">`)
		default:
			p.lit(`<textarea`).attr("name", prefix+"content").lit(` rows="4" aria-label="Paragraph">`).text(blk.Content).lit(`</textarea>`)
		}
		p.actionButton(remove, "Remove block")
		p.lit(`</div>`)
	}
	p.actionButton("add-block:"+sIdx, "Add block")
	p.actionButton("remove-section:"+sIdx, "Remove section")
	p.lit(`</fieldset>`)
}

func (p *page) textField(label markup, name, value string) {
	p.lit(`<label>`).lit(label).lit(` <input type="text"`).attr("name", name).attr("value", value).lit(`></label>`)
}

func (p *page) textArea(label markup, name, value string) {
	p.lit(`<label>`).lit(label).lit(` <textarea`).attr("name", name).lit(` rows="3">`).text(value).lit(`</textarea></label>`)
}

func (p *page) actionButton(action string, label markup) {
	p.lit(`<button type="submit" name="action"`).attr("value", action).lit(`>`).lit(label).lit(`</button>`)
}

// AdminImages is the upload form and image library.
func AdminImages(images []Image, csrf string) templ.Component {
	var p page
	p.lit(`<section class="admin-images"><header class="admin-bar"><h1>Images</h1><a href="/admin/">Back to posts</a></header>`)
	p.lit(`<form method="post" action="/admin/images/upload/" enctype="multipart/form-data">`).csrfField(csrf)
	p.lit(`<input type="file" name="image" accept="image/jpeg,image/png,image/gif" required><button type="submit">Upload</button></form>`)
	if len(images) == 0 {
		p.lit(`<p>No images uploaded yet.</p>`)
	}
	p.lit(`<ul class="admin-image-grid">`)
	for _, img := range images {
		p.lit(`<li><img`).attr("src", img.URL()).attr("alt", img.OriginalName).lit(` loading="lazy">`)
		p.lit(`<code>`).text(img.URL()).lit(`</code>`)
		p.lit(`<span>`).num(img.Width).lit(`×`).num(img.Height).lit(`, `).num(img.Size / 1024).lit(` KB</span>`)
		p.postButton("/admin/images/"+PathEscape(img.Filename)+"/delete/", csrf, "Delete").lit(`</li>`)
	}
	p.lit(`</ul></section>`)
	return adminLayout("Images", p.out())
}
