package sections

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"accessdash/internal/format"
	"accessdash/internal/model"
	"accessdash/internal/page"
)

// Captured image placeholders.
var (
	ImagesLoading = blockPlaceholder("loading", "Loading captured images...")
	ImagesEmpty   = blockPlaceholder("empty", "No unauthorized access images found")
	ImagesError   = blockPlaceholder("empty", "Error loading images")
)

// ImageCountError replaces the image count when the fetch fails.
const ImageCountError = "Error"

// ErrPageOutOfRange rejects navigation outside 1..total pages.
var ErrPageOutOfRange = errors.New("images: page out of range")

// ImageCard is one captured image in the grid.
type ImageCard struct {
	URL      string
	Filename string
	Taken    string
}

// Pager is the prev/next control shown when there is more than one page.
type Pager struct {
	Page         int
	Pages        int
	PrevDisabled bool
	NextDisabled bool
}

// ImageGrid is the captured-images view model.
type ImageGrid struct {
	Cards []ImageCard
	Pager *Pager
	Count string
}

// ImageCountText is the caption above the grid.
func ImageCountText(total int) string {
	return fmt.Sprintf("%d unauthorized access image(s) found", total)
}

// BuildImageGrid maps one backend page to the grid view model. pageNum is
// the page that was requested.
func BuildImageGrid(p model.ImagePage, pageNum int, loc *time.Location) ImageGrid {
	pages := p.TotalPages
	if pages < 1 {
		pages = 1
	}
	grid := ImageGrid{Count: ImageCountText(p.Total)}
	for _, img := range p.Images {
		grid.Cards = append(grid.Cards, ImageCard{
			URL:      img.URL,
			Filename: img.Filename,
			Taken:    format.EpochTime(img.Timestamp, loc),
		})
	}
	if len(grid.Cards) > 0 && pages > 1 {
		grid.Pager = &Pager{
			Page:         pageNum,
			Pages:        pages,
			PrevDisabled: pageNum <= 1,
			NextDisabled: pageNum >= pages,
		}
	}
	return grid
}

// BuildImages renders the grid. Each card opens the image overlay; pager
// buttons post the target page.
func BuildImages(g ImageGrid) template.HTML {
	if len(g.Cards) == 0 {
		return ImagesEmpty
	}
	var b strings.Builder
	for _, c := range g.Cards {
		url, name := format.EscapeHTML(c.URL), format.EscapeHTML(c.Filename)
		fmt.Fprintf(&b, `<form class="image-card" method="post" action="/modal/open">`+
			`<input type="hidden" name="url" value="%s"><input type="hidden" name="filename" value="%s">`+
			`<button type="submit" class="image-wrapper"><img src="%s" alt="%s" loading="lazy"></button>`+
			`<div class="image-info"><div class="image-filename">%s</div><div class="image-timestamp">%s</div></div>`+
			`</form>`,
			url, name, url, name, name, format.EscapeHTML(c.Taken))
	}
	if p := g.Pager; p != nil {
		b.WriteString(`<div class="pagination-controls">`)
		pagerButton(&b, p.Page-1, "prev", "&#9664; Previous", p.PrevDisabled)
		fmt.Fprintf(&b, `<span class="pagination-info">Page %d of %d</span>`, p.Page, p.Pages)
		pagerButton(&b, p.Page+1, "next", "Next &#9654;", p.NextDisabled)
		b.WriteString(`</div>`)
	}
	return template.HTML(b.String())
}

func pagerButton(b *strings.Builder, target int, nav, label string, disabled bool) {
	attr := ""
	if disabled {
		attr = " disabled"
	}
	fmt.Fprintf(b, `<form method="post" action="/images/page/%d"><button type="submit" class="btn btn-secondary" data-nav="%s"%s>%s</button></form>`,
		target, nav, attr, label)
}

// ImagePages returns the current page and the total known from the last fetch.
func (r *Renderer) ImagePages() (current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.imagePage, r.imagePages
}

// CheckImagePage validates navigation to pageNum. Page 1 is always allowed;
// any other page must lie within the total reported by the previous fetch.
func (r *Renderer) CheckImagePage(pageNum int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkPageLocked(pageNum)
}

func (r *Renderer) checkPageLocked(pageNum int) error {
	if pageNum != 1 && (pageNum < 1 || pageNum > r.imagePages) {
		return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, pageNum, r.imagePages)
	}
	return nil
}

// Images loads one page of captured images. Out-of-range pages are rejected
// without a request, so disabled pager buttons can never reach the backend.
func (r *Renderer) Images(ctx context.Context, pageNum int) error {
	r.mu.Lock()
	if err := r.checkPageLocked(pageNum); err != nil {
		r.mu.Unlock()
		return err
	}
	r.imagePage = pageNum
	r.mu.Unlock()

	r.page.SetHTML(page.IDImagesGrid, ImagesLoading)
	res, err := r.api.LatestImages(ctx, pageNum, r.opts.ImagesPerPage)
	if err != nil {
		r.failed(NameImages, err)
		r.page.SetHTML(page.IDImagesGrid, ImagesError)
		r.page.SetText(page.IDImageCount, ImageCountError)
		return nil
	}

	grid := BuildImageGrid(res, pageNum, r.opts.Location)
	r.mu.Lock()
	r.imagePages = 1
	if res.TotalPages > 1 {
		r.imagePages = res.TotalPages
	}
	r.mu.Unlock()

	r.page.SetText(page.IDImageCount, grid.Count)
	r.page.SetHTML(page.IDImagesGrid, BuildImages(grid))
	r.rendered(NameImages, len(grid.Cards))
	return nil
}
