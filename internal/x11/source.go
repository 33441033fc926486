package x11

import (
	"context"
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/wm"
)

// CaptureSource grabs window contents with GetImage. Obscured or unmapped
// windows fail the request; callers treat that as capture.ErrUnavailable.
type CaptureSource struct {
	conn *Conn
}

var _ capture.Source = (*CaptureSource)(nil)

// NewCaptureSource wraps an X connection.
func NewCaptureSource(conn *Conn) *CaptureSource {
	return &CaptureSource{conn: conn}
}

// Capture implements capture.Source.
func (s *CaptureSource) Capture(ctx context.Context, id wm.WindowID) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	xc := s.conn.XUtil.Conn()
	drawable := xproto.Drawable(id)

	geom, err := xproto.GetGeometry(xc, drawable).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: geometry query failed: %v", capture.ErrUnavailable, err)
	}
	width, height := int(geom.Width), int(geom.Height)
	if width <= 0 || height <= 0 {
		return nil, capture.ErrUnavailable
	}

	reply, err := xproto.GetImage(xc, xproto.ImageFormatZPixmap, drawable,
		0, 0, geom.Width, geom.Height, 0xFFFFFFFF).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: get-image failed: %v", capture.ErrUnavailable, err)
	}
	if reply.Depth != 24 && reply.Depth != 32 {
		return nil, fmt.Errorf("%w: unsupported depth %d", capture.ErrUnavailable, reply.Depth)
	}
	if len(reply.Data) < width*height*4 {
		return nil, fmt.Errorf("%w: short image data", capture.ErrUnavailable)
	}

	// ZPixmap data at depth 24/32 is 32 bits per pixel, B G R X byte order.
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		src := i * 4
		dst := i * 4
		img.Pix[dst+0] = reply.Data[src+2]
		img.Pix[dst+1] = reply.Data[src+1]
		img.Pix[dst+2] = reply.Data[src+0]
		img.Pix[dst+3] = 0xFF
	}
	return img, nil
}
