// Package ui renders the HTML route index served at "/".
package ui

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/index.html
var content embed.FS

var index = template.Must(template.ParseFS(content, "templates/index.html"))

// Route is one entry of the index page.
type Route struct {
	Path        string
	Description string
}

// Routes lists the public endpoints in display order.
var Routes = []Route{
	{"/shortest-path?origen=<nodo>&destino=<nodo>", "Encuentra el camino más corto entre dos nodos."},
	{"/all-paths?origen=<nodo>&destino=<nodo>&max_depth=<numero>&max_paths=<numero>", "Encuentra rutas posibles entre dos nodos con un límite opcional de longitud máxima y número de rutas. Por defecto, la longitud máxima es 5 y se devuelven hasta 50 rutas."},
	{"/maximum-distance", "Calcula la distancia máxima entre nodos."},
	{"/clusters", "Muestra los clústeres del grafo."},
	{"/high-connectivity-nodes?min=<número>", "Lista nodos con alta conectividad."},
	{"/nodes-by-degree?degree=<número>", "Lista nodos con un grado específico."},
	{"/isolated-nodes", "Lista los nodos aislados en el grafo."},
	{"/stats", "Muestra el tamaño del grafo activo y el archivo que lo respalda."},
	{"/health", "Verifica si la API está funcionando correctamente."},
	{"/filter-graph?min=<longitud>&max=<longitud>", "Filtra el grafo por longitud de palabras y muestra nodos y aristas filtrados."},
	{"/reset-graph", "Reinicia el grafo a su estado original."},
}

// RenderIndex writes the index page.
func RenderIndex(w io.Writer) error {
	return index.Execute(w, Routes)
}
