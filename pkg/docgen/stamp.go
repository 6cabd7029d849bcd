package docgen

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wxjw/Vanka/pkg/docgen/placement"
)

// stampResourceName prefixes the XObject name of the stamp image.
const stampResourceName = "Stamp"

var disableConfigDir sync.Once

func pdfConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// StampImages draws the stamp image onto the PDF once per placement. Every
// placement is resolved before anything is drawn; on error no output is
// produced.
func (e *Engine) StampImages(pdf, stamp []byte, placements []placement.Descriptor) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, RecoverError(r)
		}
	}()
	logger := e.logger.WithField("placements", len(placements))

	if len(pdf) == 0 {
		return nil, NewValidationError("pdf", "", "PDF is empty")
	}
	if len(stamp) == 0 {
		return nil, NewValidationError("stamp", "", "stamp image is empty")
	}
	if len(placements) == 0 {
		return nil, NewValidationError("placements", "", "at least one placement is required")
	}

	format, err := DetectImageFormat(stamp)
	if err != nil {
		return nil, err
	}
	natural, err := imageSize(stamp)
	if err != nil {
		return nil, err
	}

	ctx, err := api.ReadContext(bytes.NewReader(pdf), pdfConfiguration())
	if err != nil {
		return nil, NewDocumentError("read", "pdf", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, NewDocumentError("read", "pdf", err)
	}

	pages, err := pageSizes(ctx)
	if err != nil {
		return nil, err
	}

	resolved, err := placement.ResolveAll(placements, pages, natural)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved %d placements on %d pages (%s stamp %gx%g)", len(resolved), len(pages), format, natural.Width, natural.Height)

	imageRef, _, _, err := model.CreateImageResource(ctx.XRefTable, bytes.NewReader(stamp), false, false)
	if err != nil {
		return nil, NewDocumentError("embed", "stamp", err)
	}

	byPage := make(map[int][]placement.Rect)
	for _, p := range resolved {
		byPage[p.PageIndex] = append(byPage[p.PageIndex], p.Rect)
	}
	pageIndexes := make([]int, 0, len(byPage))
	for idx := range byPage {
		pageIndexes = append(pageIndexes, idx)
	}
	sort.Ints(pageIndexes)

	for _, idx := range pageIndexes {
		if err := stampPage(ctx, idx+1, *imageRef, byPage[idx]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, NewDocumentError("write", "pdf", err)
	}
	logger.Debug("stamped %d pages", len(pageIndexes))
	return buf.Bytes(), nil
}

// pageSizes returns the media box size of every page in order.
func pageSizes(ctx *model.Context) ([]placement.Size, error) {
	sizes := make([]placement.Size, ctx.PageCount)
	for i := range sizes {
		_, _, inherited, err := ctx.PageDict(i+1, false)
		if err != nil {
			return nil, NewDocumentError("read", fmt.Sprintf("page %d", i+1), err)
		}
		if inherited == nil || inherited.MediaBox == nil {
			return nil, NewDocumentError("read", fmt.Sprintf("page %d", i+1), fmt.Errorf("missing media box"))
		}
		sizes[i] = placement.Size{Width: inherited.MediaBox.Width(), Height: inherited.MediaBox.Height()}
	}
	return sizes, nil
}

// stampPage adds the image to the page resources and appends one drawing
// operation per rectangle. The existing content is wrapped in q/Q so that a
// leftover transformation cannot move the stamp.
func stampPage(ctx *model.Context, pageNr int, image types.IndirectRef, rects []placement.Rect) error {
	where := fmt.Sprintf("page %d", pageNr)

	page, _, inherited, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return NewDocumentError("read", where, err)
	}

	current := types.Dict{}
	if o, found := page.Find("Resources"); found && o != nil {
		if current, err = ctx.DereferenceDict(o); err != nil {
			return NewDocumentError("read", where, err)
		}
	} else if inherited != nil {
		current = inherited.Resources
	}
	resources := types.Dict{}
	for k, v := range current {
		resources[k] = v
	}
	xobjects := types.Dict{}
	if o, found := resources["XObject"]; found && o != nil {
		existing, err := ctx.DereferenceDict(o)
		if err != nil {
			return NewDocumentError("read", where, err)
		}
		for k, v := range existing {
			xobjects[k] = v
		}
	}
	name := stampResourceName
	for i := 1; ; i++ {
		if _, taken := xobjects[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%d", stampResourceName, i)
	}
	xobjects[name] = image
	resources["XObject"] = xobjects
	page.Update("Resources", resources)

	contents, err := pageContents(ctx, page)
	if err != nil {
		return NewDocumentError("read", where, err)
	}

	var ops strings.Builder
	ops.WriteString("Q\n")
	for _, r := range rects {
		fmt.Fprintf(&ops, "q %s 0 0 %s %s %s cm /%s Do Q\n", pdfNumber(r.Width), pdfNumber(r.Height), pdfNumber(r.X), pdfNumber(r.Y), name)
	}

	open, err := contentStream(ctx, "q\n")
	if err != nil {
		return NewDocumentError("write", where, err)
	}
	draw, err := contentStream(ctx, ops.String())
	if err != nil {
		return NewDocumentError("write", where, err)
	}

	streams := types.Array{*open}
	streams = append(streams, contents...)
	streams = append(streams, *draw)
	page.Update("Contents", streams)
	return nil
}

// pageContents returns the content stream references of a page.
func pageContents(ctx *model.Context, page types.Dict) (types.Array, error) {
	o, found := page.Find("Contents")
	if !found || o == nil {
		return nil, nil
	}
	if ref, ok := o.(types.IndirectRef); ok {
		target, err := ctx.Dereference(ref)
		if err != nil {
			return nil, err
		}
		if arr, ok := target.(types.Array); ok {
			return arr, nil
		}
		return types.Array{ref}, nil
	}
	if arr, ok := o.(types.Array); ok {
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected page contents %T", o)
}

func contentStream(ctx *model.Context, content string) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf([]byte(content))
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}

func pdfNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StampImages draws a stamp with the default engine.
func StampImages(pdf, stamp []byte, placements []placement.Descriptor) ([]byte, error) {
	return DefaultEngine.StampImages(pdf, stamp, placements)
}
