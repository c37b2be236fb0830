// Package render is the production preview.Encoder. It takes the module
// matrix from github.com/skip2/go-qrcode and paints it as SVG or PNG with
// the requested margin, width and colors.
package render
