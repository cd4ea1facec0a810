// Package raster wraps the external deck rasterization pipeline
// (LibreOffice to PDF, poppler to PNG). It returns one image per slide
// position; the caller is responsible for reconciling the count with
// the script.
package raster
