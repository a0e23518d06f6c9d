package lantern

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Batches travel as a JSON array of objects, each carrying its kind under
// "type" next to the command's own fields:
//
//	[{"type":"setFillStyle","color":"#f00"},{"type":"fillRect","x":0,"y":0,"width":8,"height":8}]

type commandHeader struct {
	Type CommandKind `json:"type"`
}

// EncodeBatch serializes commands in order.
func EncodeBatch(cmds []Command) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range cmds {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := sonic.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Kind(), err)
		}
		head, err := sonic.Marshal(commandHeader{Type: c.Kind()})
		if err != nil {
			return nil, err
		}
		// Merge {"type":...} with the command's own object.
		buf.Write(head[:len(head)-1])
		if len(body) > 2 {
			buf.WriteByte(',')
			buf.Write(body[1:])
		} else {
			buf.WriteByte('}')
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// DecodeBatch parses a batch produced by EncodeBatch or by the script
// context. An unknown or missing type fails the whole batch with
// ErrInvalidArgument.
func DecodeBatch(data []byte) ([]Command, error) {
	var raw []json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: batch: %v", ErrInvalidArgument, err)
	}
	cmds := make([]Command, 0, len(raw))
	for i, r := range raw {
		c, err := DecodeCommand(r)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// DecodeCommand parses a single tagged command object.
func DecodeCommand(data []byte) (Command, error) {
	var h commandHeader
	if err := sonic.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	dec, ok := commandDecoders[h.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command type %q", ErrInvalidArgument, h.Type)
	}
	c, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, h.Type, err)
	}
	return c, nil
}

func decodeAs[T Command](data []byte) (Command, error) {
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var commandDecoders = map[CommandKind]func([]byte) (Command, error){
	KindSetFillStyle:          decodeAs[SetFillStyle],
	KindSetStrokeStyle:        decodeAs[SetStrokeStyle],
	KindSetFillGradient:       decodeAs[SetFillGradient],
	KindSetStrokeGradient:     decodeAs[SetStrokeGradient],
	KindSetLineWidth:          decodeAs[SetLineWidth],
	KindSetLineCap:            decodeAs[SetLineCap],
	KindSetLineJoin:           decodeAs[SetLineJoin],
	KindSetMiterLimit:         decodeAs[SetMiterLimit],
	KindSetLineDash:           decodeAs[SetLineDash],
	KindSetLineDashOffset:     decodeAs[SetLineDashOffset],
	KindSetFont:               decodeAs[SetFont],
	KindSetTextAlign:          decodeAs[SetTextAlign],
	KindSetTextBaseline:       decodeAs[SetTextBaseline],
	KindSetGlobalAlpha:        decodeAs[SetGlobalAlpha],
	KindSetCompositeOperation: decodeAs[SetCompositeOperation],
	KindSetShadowColor:        decodeAs[SetShadowColor],
	KindSetShadowBlur:         decodeAs[SetShadowBlur],
	KindSetShadowOffset:       decodeAs[SetShadowOffset],
	KindSetFilter:             decodeAs[SetFilter],
	KindSetImageSmoothing:     decodeAs[SetImageSmoothing],
	KindSave:                  decodeAs[Save],
	KindRestore:               decodeAs[Restore],
	KindTranslate:             decodeAs[Translate],
	KindRotate:                decodeAs[Rotate],
	KindScale:                 decodeAs[Scale],
	KindTransform:             decodeAs[Transform],
	KindSetTransform:          decodeAs[SetTransform],
	KindResetTransform:        decodeAs[ResetTransform],
	KindBeginPath:             decodeAs[BeginPath],
	KindClosePath:             decodeAs[ClosePath],
	KindMoveTo:                decodeAs[MoveTo],
	KindLineTo:                decodeAs[LineTo],
	KindQuadraticCurveTo:      decodeAs[QuadraticCurveTo],
	KindBezierCurveTo:         decodeAs[BezierCurveTo],
	KindArc:                   decodeAs[Arc],
	KindEllipse:               decodeAs[Ellipse],
	KindRect:                  decodeAs[AddRect],
	KindRoundRect:             decodeAs[AddRoundRect],
	KindFill:                  decodeAs[Fill],
	KindStroke:                decodeAs[Stroke],
	KindClip:                  decodeAs[Clip],
	KindClear:                 decodeAs[Clear],
	KindReset:                 decodeAs[Reset],
	KindClearRect:             decodeAs[ClearRect],
	KindFillRect:              decodeAs[FillRect],
	KindStrokeRect:            decodeAs[StrokeRect],
	KindFillText:              decodeAs[FillText],
	KindStrokeText:            decodeAs[StrokeText],
	KindDrawImage:             decodeAs[DrawImage],
	KindCreatePath:            decodeAs[CreatePath],
	KindClonePath:             decodeAs[ClonePath],
	KindDisposePath:           decodeAs[DisposePath],
	KindPathMoveTo:            decodeAs[PathMoveTo],
	KindPathLineTo:            decodeAs[PathLineTo],
	KindPathQuadraticCurveTo:  decodeAs[PathQuadraticCurveTo],
	KindPathBezierCurveTo:     decodeAs[PathBezierCurveTo],
	KindPathArc:               decodeAs[PathArc],
	KindPathEllipse:           decodeAs[PathEllipse],
	KindPathRect:              decodeAs[PathRect],
	KindPathRoundRect:         decodeAs[PathRoundRect],
	KindPathClosePath:         decodeAs[PathClosePath],
	KindFillPath:              decodeAs[FillPath],
	KindStrokePath:            decodeAs[StrokePath],
	KindClipPath:              decodeAs[ClipPath],
	KindCreateImageData:       decodeAs[CreateImageData],
	KindGetImageData:          decodeAs[GetImageData],
	KindCloneImageData:        decodeAs[CloneImageData],
	KindSetPixel:              decodeAs[SetPixel],
	KindPutImageData:          decodeAs[PutImageData],
	KindDisposeImageData:      decodeAs[DisposeImageData],
}
