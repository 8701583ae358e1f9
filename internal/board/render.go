package board

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/annel0/battleship3d/internal/geometry"
)

// Render возвращает текстовый вид проекции:
// "~": пусто, "S": корабль, "X": попадание.
func (b *Board) Render(p geometry.Projection) string {
	if !p.Valid() {
		return ""
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	g := b.grids[p]
	extent := geometry.Extent(p, b.dims)
	colAxis, rowAxis := p.Axes()

	var buffer bytes.Buffer
	tabWriter := tabwriter.NewWriter(&buffer, 3, 0, 1, ' ', 0)

	// Заголовок: оси и номера столбцов
	fmt.Fprintf(tabWriter, "%v\\%v\t", rowAxis, colAxis)
	for column := 0; column < extent.X; column++ {
		fmt.Fprint(tabWriter, strconv.Itoa(column)+"\t")
	}
	fmt.Fprint(tabWriter, "\n")

	for row := 0; row < extent.Y; row++ {
		fmt.Fprint(tabWriter, strconv.Itoa(row)+"\t")
		for column := 0; column < extent.X; column++ {
			cl := g[row][column]
			switch {
			case cl.slot != 0 && cl.hit:
				fmt.Fprint(tabWriter, "X\t")
			case cl.slot != 0:
				fmt.Fprint(tabWriter, "S\t")
			default:
				fmt.Fprint(tabWriter, "~\t")
			}
		}
		fmt.Fprint(tabWriter, "\n")
	}
	tabWriter.Flush()
	return buffer.String()
}

// String возвращает все три проекции поля
func (b *Board) String() string {
	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, "BOARD %s owner=%q dims=%v\n", b.id, b.owner.Name, b.dims)
	for _, p := range geometry.Projections {
		fmt.Fprintf(&buffer, "%v:\n%s", p, b.Render(p))
	}
	return buffer.String()
}
