// Package server exposes the inkpack pipeline over HTTP and hands websocket
// clients to a stream.Manager.
//
// Raster endpoints take the raw RGBA buffer as the request body with width
// and height query parameters, and answer with raw bytes.
package server

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/tmpim/inkpack"
	"github.com/tmpim/inkpack/stream"
)

// maxBody bounds raster request bodies: 4096x4096 RGBA.
const maxBody = 4096 * 4096 * 4

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 5 * time.Second,
}

type handler struct {
	mgr  *stream.Manager
	base inkpack.Options
}

// New returns an echo instance serving the API under /api. base supplies
// defaults for /api/encode that query parameters override.
func New(mgr *stream.Manager, base inkpack.Options) *echo.Echo {
	h := &handler{mgr: mgr, base: base}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	api := e.Group("/api")
	api.GET("/client", h.client)
	api.GET("/panels", h.panels)
	api.GET("/frame", h.frame)
	api.POST("/dither", h.dither)
	api.POST("/quantize", h.quantize)
	api.POST("/pack", h.pack)
	api.POST("/encode", h.encode)

	return e
}

func (h *handler) client(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mgr.HandleConn(ws)

	return nil
}

func (h *handler) panels(c echo.Context) error {
	return c.JSON(http.StatusOK, inkpack.Panels())
}

func (h *handler) frame(c echo.Context) error {
	data, _, ok := h.mgr.Latest()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no frame published")
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

func (h *handler) dither(c echo.Context) error {
	r, err := readRaster(c, 0, 0)
	if err != nil {
		return err
	}
	threshold, err := intParam(c, "threshold", inkpack.DefaultThreshold)
	if err != nil {
		return err
	}

	if err := inkpack.Greyscale(r); err != nil {
		return badRequest(err)
	}
	algo := inkpack.ParseAlgorithm(c.QueryParam("algorithm"))
	if err := inkpack.DitherGreyscale(r, threshold, algo); err != nil {
		return badRequest(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, r.Pix)
}

func (h *handler) quantize(c echo.Context) error {
	r, err := readRaster(c, 0, 0)
	if err != nil {
		return err
	}

	var palette inkpack.Palette
	if colors := c.QueryParam("colors"); colors != "" {
		palette, err = inkpack.ParsePalette(strings.Split(colors, ","))
	} else {
		name := c.QueryParam("palette")
		if name == "" {
			name = "bwr"
		}
		palette, err = inkpack.PaletteByName(name)
	}
	if err != nil {
		return badRequest(err)
	}

	if kernel := c.QueryParam("kernel"); kernel != "" {
		err = inkpack.DitherKernel(r, palette, inkpack.KernelOptions{
			Name:       kernel,
			Serpentine: c.QueryParam("serpentine") == "true",
		})
	} else {
		var metric inkpack.Metric
		if metric, err = inkpack.ParseMetric(c.QueryParam("metric")); err != nil {
			return badRequest(err)
		}
		err = inkpack.Quantize(r, palette, inkpack.QuantizeOptions{
			Diffusion: inkpack.ParseDiffusion(c.QueryParam("diffusion")),
			Metric:    metric,
		})
	}
	if err != nil {
		return badRequest(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, r.Pix)
}

func (h *handler) pack(c echo.Context) error {
	r, err := readRaster(c, 0, 0)
	if err != nil {
		return err
	}
	mode, err := inkpack.ParsePackMode(c.QueryParam("mode"))
	if err != nil {
		return badRequest(err)
	}

	data, err := inkpack.Pack(r, mode, inkpack.PackOptions{
		Invert:     c.QueryParam("invert") == "true",
		RowAligned: c.QueryParam("aligned") == "true",
	})
	if err != nil {
		return badRequest(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

func (h *handler) encode(c echo.Context) error {
	opts, err := h.options(c)
	if err != nil {
		return err
	}

	var w, ht int
	if opts.Panel != "" {
		panel, err := inkpack.PanelByName(opts.Panel)
		if err != nil {
			return badRequest(err)
		}
		w, ht = panel.Width, panel.Height
	}
	r, err := readRaster(c, w, ht)
	if err != nil {
		return err
	}

	frame, err := inkpack.Encode(r, opts)
	if err != nil {
		return badRequest(err)
	}
	if err := h.mgr.Publish(frame); err != nil {
		return err
	}

	data, err := frame.MarshalBinary()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

// options overlays query parameters on the base options.
func (h *handler) options(c echo.Context) (inkpack.Options, error) {
	opts := h.base
	strs := map[string]*string{
		"panel":     &opts.Panel,
		"algorithm": &opts.Algorithm,
		"palette":   &opts.Palette,
		"diffusion": &opts.Diffusion,
		"metric":    &opts.Metric,
		"kernel":    &opts.Kernel,
		"mode":      &opts.Mode,
	}
	for name, dst := range strs {
		if v := c.QueryParam(name); v != "" {
			*dst = v
		}
	}
	if opts.Panel != h.base.Panel && c.QueryParam("mode") == "" {
		opts.Mode = ""
	}

	bools := map[string]*bool{
		"invert":     &opts.Invert,
		"aligned":    &opts.RowAligned,
		"compressed": &opts.Compressed,
		"serpentine": &opts.Serpentine,
	}
	for name, dst := range bools {
		if v := c.QueryParam(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, badRequest(fmt.Errorf("%s: %w", name, err))
			}
			*dst = b
		}
	}

	if colors := c.QueryParam("colors"); colors != "" {
		opts.Colors = strings.Split(colors, ",")
	}

	if c.QueryParam("threshold") != "" {
		threshold, err := intParam(c, "threshold", 0)
		if err != nil {
			return opts, err
		}
		opts.Threshold = &threshold
	}
	return opts, nil
}

// readRaster reads the request body as an RGBA buffer. Query parameters
// override the default width and height.
func readRaster(c echo.Context, width, height int) (*inkpack.Raster, error) {
	w, err := intParam(c, "width", width)
	if err != nil {
		return nil, err
	}
	h, err := intParam(c, "height", height)
	if err != nil {
		return nil, err
	}
	if !inkpack.ValidSize(w, h) || w > maxBody/4/h {
		return nil, badRequest(fmt.Errorf("%dx%d: %w", w, h, inkpack.ErrInvalidDimensions))
	}

	pix, err := ioutil.ReadAll(io.LimitReader(c.Request().Body, maxBody+1))
	if err != nil {
		return nil, err
	}

	r := &inkpack.Raster{Pix: pix, Width: w, Height: h}
	if err := r.Validate(); err != nil {
		return nil, badRequest(err)
	}
	return r, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest(fmt.Errorf("%s: %w", name, err))
	}
	return n, nil
}

func badRequest(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
