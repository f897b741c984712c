// Package npy 读写 NumPy 的 NPY v1.0 格式的稠密矩阵。
//
// 离线训练任务（numpy/implicit）通过 np.save 产出 Embedding 矩阵与
// ALS 隐向量矩阵，本包只实现服务端需要的子集：
//   - dtype: '<f4'（float32）与 '<f8'（float64）
//   - 一维或二维、C 连续（fortran_order=False）
//
// 读取结果统一提升为 float64，便于打分计算。
package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var magic = []byte("\x93NUMPY")

// Matrix 是按行主序存储的稠密矩阵。一维数组表达为 Rows=n, Cols=1。
type Matrix struct {
	Rows int
	Cols int
	Data []float64 // len == Rows*Cols，行主序
}

// Row 返回第 i 行的切片视图（不复制）。
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// ReadFile 从文件读取 NPY 矩阵。
func ReadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read 从 reader 读取 NPY 矩阵。
func Read(r io.Reader) (*Matrix, error) {
	head := make([]byte, 8)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("npy: read magic: %w", err)
	}
	if !bytes.Equal(head[:6], magic) {
		return nil, fmt.Errorf("npy: bad magic %q", head[:6])
	}
	if head[6] != 1 {
		return nil, fmt.Errorf("npy: unsupported version %d.%d", head[6], head[7])
	}

	var headerLen uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("npy: read header length: %w", err)
	}
	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, fmt.Errorf("npy: read header: %w", err)
	}

	descr, fortran, rows, cols, err := parseHeader(string(headerBuf))
	if err != nil {
		return nil, err
	}
	if fortran {
		return nil, fmt.Errorf("npy: fortran_order arrays are not supported")
	}

	n := rows * cols
	out := &Matrix{Rows: rows, Cols: cols, Data: make([]float64, n)}

	switch descr {
	case "<f8":
		buf := make([]byte, 8*n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("npy: read data: %w", err)
		}
		for i := 0; i < n; i++ {
			out.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
	case "<f4":
		buf := make([]byte, 4*n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("npy: read data: %w", err)
		}
		for i := 0; i < n; i++ {
			out.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		}
	default:
		return nil, fmt.Errorf("npy: unsupported dtype %q", descr)
	}

	return out, nil
}

// WriteFile 将矩阵以 '<f8' dtype 写入文件（主要用于测试与工具脚本）。
func WriteFile(path string, m *Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, m)
}

// Write 将矩阵以 '<f8' dtype 写出。
func Write(w io.Writer, m *Matrix) error {
	var shape string
	if m.Cols == 1 {
		shape = fmt.Sprintf("(%d,)", m.Rows)
	} else {
		shape = fmt.Sprintf("(%d, %d)", m.Rows, m.Cols)
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': %s, }", shape)
	// header（含结尾换行）需要把总长度补齐到 64 字节对齐
	total := len(magic) + 2 + 2 + len(header) + 1
	pad := (64 - total%64) % 64
	header += strings.Repeat(" ", pad) + "\n"

	if _, err := w.Write(magic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}

	buf := make([]byte, 8*len(m.Data))
	for i, v := range m.Data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// parseHeader 解析 NPY 的 python 字典头，只取 descr / fortran_order / shape。
func parseHeader(h string) (descr string, fortran bool, rows, cols int, err error) {
	descr, err = headerValue(h, "'descr':")
	if err != nil {
		return
	}
	descr = strings.Trim(descr, "' ")

	order, err2 := headerValue(h, "'fortran_order':")
	if err2 != nil {
		err = err2
		return
	}
	fortran = strings.HasPrefix(strings.TrimSpace(order), "True")

	open := strings.Index(h, "(")
	close := strings.Index(h, ")")
	if open < 0 || close < open {
		err = fmt.Errorf("npy: shape not found in header")
		return
	}
	dims := make([]int, 0, 2)
	for _, part := range strings.Split(h[open+1:close], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, perr := strconv.Atoi(part)
		if perr != nil {
			err = fmt.Errorf("npy: bad shape dimension %q", part)
			return
		}
		dims = append(dims, d)
	}
	switch len(dims) {
	case 1:
		rows, cols = dims[0], 1
	case 2:
		rows, cols = dims[0], dims[1]
	default:
		err = fmt.Errorf("npy: unsupported rank %d", len(dims))
	}
	return
}

// headerValue 提取 key 之后、下一个逗号之前的原始文本。
func headerValue(h, key string) (string, error) {
	i := strings.Index(h, key)
	if i < 0 {
		return "", fmt.Errorf("npy: %s not found in header", key)
	}
	rest := h[i+len(key):]
	j := strings.Index(rest, ",")
	if j < 0 {
		return "", fmt.Errorf("npy: malformed header after %s", key)
	}
	return strings.TrimSpace(rest[:j]), nil
}
