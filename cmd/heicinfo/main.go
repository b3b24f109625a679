/*
NAME
  heicinfo - dumps HEIF/HEIC image dimensions and decoded plane checksums.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is a thin example binary driving the heic decoder core
// against a file on disk. It reports container/SPS-derived dimensions or,
// with -decode, a checksum of each decoded plane (for a grid primary item,
// the planes of its first tile); it never performs YCbCr-to-RGB packaging
// or any other presentation step.
package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/heic"
)

const (
	logPath      = "/var/log/heicinfo/heicinfo.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

func main() {
	path := flag.String("path", "", "Path to a HEIF/HEIC file")
	decode := flag.Bool("decode", false, "Run the full decode pipeline instead of the Info fast path")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(logVerbosity, fileLog, logSuppress)
	heic.Log = l

	if *path == "" {
		l.Fatal("-path is required")
	}
	data, err := os.ReadFile(*path)
	if err != nil {
		l.Fatal("could not read file", "error", err.Error())
	}

	s := heic.NewSession(heic.WithLogger(l))

	if !*decode {
		info, err := s.Info(data)
		if err != nil {
			l.Fatal("Info failed", "error", err.Error())
		}
		fmt.Printf("%dx%d chroma_format_idc=%d bit_depth=%d grid=%v\n",
			info.Width, info.Height, info.ChromaFormatIDC, info.BitDepthLuma, info.IsGrid)
		return
	}

	res, err := s.Decode(data)
	if err != nil {
		l.Fatal("Decode failed", "error", err.Error())
	}
	fmt.Printf("%dx%d (cropped %dx%d) y=%08x cb=%08x cr=%08x\n",
		res.Frame.Width, res.Frame.Height, res.Frame.CropWidth, res.Frame.CropHeight,
		checksum(res.Frame.Y), checksum(res.Frame.Cb), checksum(res.Frame.Cr))
}

func checksum(samples []uint16) uint32 {
	h := fnv.New32a()
	for _, s := range samples {
		h.Write([]byte{byte(s >> 8), byte(s)})
	}
	return h.Sum32()
}
