package pdffixture

import (
	"bytes"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func TestBuild_PageCount(t *testing.T) {
	for _, n := range []int{1, 4} {
		ctx, err := pdfapi.ReadContext(bytes.NewReader(Build(n)), model.NewDefaultConfiguration())
		if err != nil {
			t.Fatalf("%d 页：读取失败：%v", n, err)
		}
		if err := pdfapi.ValidateContext(ctx); err != nil {
			t.Fatalf("%d 页：校验失败：%v", n, err)
		}
		if ctx.PageCount != n {
			t.Fatalf("期望 %d 页，实际 %d", n, ctx.PageCount)
		}
	}
}
