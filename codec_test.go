package lantern

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBatchRoundTripKeepsOrder(t *testing.T) {
	in := []Command{
		Save{},
		SetFillStyle{Color: "#ff0000"},
		FillRect{X: 1, Y: 2, Width: 3, Height: 4},
		Arc{X: 5, Y: 5, Radius: 2, EndAngle: 3.14, CounterClockwise: true},
		DrawImage{Image: "hero", DX: 10, DY: 20, Src: &Rect{X: 0, Y: 0, Width: 8, Height: 8}},
		SetFillGradient{Gradient: GradientDescriptor{
			Kind: GradientConic, X0: 4, Y0: 4, Angle: 1,
			Stops: []GradientStop{{Offset: 0, Color: "red"}, {Offset: 1, Color: "blue"}},
		}},
		CreatePath{ID: 7},
		PathLineTo{ID: 7, X: 1, Y: 1},
		SetPixel{ID: 3, X: 1, Y: 1, R: 255, A: 128},
		Restore{},
	}
	data, err := EncodeBatch(in)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	out, err := DecodeBatch(data)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch\n got %#v\nwant %#v", out, in)
	}
}

func TestEncodeBatchWireShape(t *testing.T) {
	data, err := EncodeBatch([]Command{Save{}, Translate{X: 1, Y: 2}})
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, `[{"type":"save"}`) {
		t.Errorf("empty command encoded as %s", got)
	}
	if !strings.Contains(got, `"type":"translate"`) || !strings.Contains(got, `"x":1`) {
		t.Errorf("translate encoded as %s", got)
	}
}

func TestDecodeBatchScriptForm(t *testing.T) {
	// The shape recorded by the script prelude: no omitted-field defaults.
	cmds, err := DecodeBatch([]byte(`[
		{"type":"beginPath"},
		{"type":"rect","x":0,"y":0,"width":4,"height":4},
		{"type":"fill"},
		{"type":"putImageData","imageDataId":2,"dx":1,"dy":1}
	]`))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	want := []Command{
		BeginPath{},
		AddRect{Width: 4, Height: 4},
		Fill{},
		PutImageData{ID: 2, DX: 1, DY: 1},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("got %#v, want %#v", cmds, want)
	}
}

func TestDecodeBatchErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{`},
		{"not array", `{"type":"save"}`},
		{"unknown type", `[{"type":"explode"}]`},
		{"missing type", `[{"x":1}]`},
		{"bad field", `[{"type":"fillRect","x":"left"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBatch([]byte(tt.in))
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestEveryKindDecodes(t *testing.T) {
	if len(commandDecoders) != 70 {
		t.Errorf("decoders = %d, want 70", len(commandDecoders))
	}
	for kind, dec := range commandDecoders {
		c, err := dec([]byte(`{}`))
		if err != nil {
			t.Errorf("%s: %v", kind, err)
			continue
		}
		if c.Kind() != kind {
			t.Errorf("decoder for %s built %s", kind, c.Kind())
		}
	}
}
