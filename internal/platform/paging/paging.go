// Package paging normaliza page/page_size y arma la respuesta paginada.
package paging

import (
	"net/http"
	"strconv"
	"strings"
)

// Page es el sobre común de los listados paginados.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
}

// Request es una página pedida, 1-based.
type Request struct {
	Page int
	Size int
}

func New(page, size int) Request {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	return Request{Page: page, Size: size}
}

// PageParam lee ?page=; ausente o inválido => 0 (New lo lleva a 1).
func PageParam(r *http.Request) int {
	p, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	return p
}

func (r Request) Offset() int { return (r.Page - 1) * r.Size }
func (r Request) Limit() int  { return r.Size }

// Build arma la página; items nil se serializa como [].
func Build[T any](req Request, items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.Size,
		Total:    total,
		HasNext:  req.Offset()+len(items) < total,
	}
}

// Map convierte los items conservando la metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[U]{Items: out, Page: p.Page, PageSize: p.PageSize, Total: p.Total, HasNext: p.HasNext}
}

// Window recorta un slice ya ordenado (usado por el storage in-memory).
// Devuelve una copia; limit <= 0 = sin tope.
func Window[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]T(nil), all[offset:end]...)
}
