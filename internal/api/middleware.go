package api

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo"

	"github.com/statgen/fivex/internal/locate"
)

// Context keys set by the validation middleware.
const (
	keyChrom    = "chrom"
	keyStart    = "start"
	keyEnd      = "end"
	keyDataType = "datatype"
)

var chromPattern = regexp.MustCompile(`^([1-9]|1[0-9]|2[0-2]|X|Y|MT?)$`)

/*
Echo middleware to ensure the `chrom` path parameter names a human
chromosome, with or without a "chr" prefix
*/
func ValidateChromosome(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		chrom := locate.NormalizeChrom(c.Param("chrom"))
		if !chromPattern.MatchString(chrom) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown chromosome: "+c.Param("chrom"))
		}
		c.Set(keyChrom, chrom)
		return next(c)
	}
}

func parsePosition(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

// ValidatePosition requires a positive integer `pos` path parameter.
func ValidatePosition(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		pos, ok := parsePosition(c.Param("pos"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "Position must be a positive integer")
		}
		c.Set(keyStart, pos)
		return next(c)
	}
}

// ValidateRegion requires positive `start` and `end` path parameters with
// start <= end.
func ValidateRegion(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start, ok := parsePosition(c.Param("start"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "Start must be a positive integer")
		}
		end, ok := parsePosition(c.Param("end"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "End must be a positive integer")
		}
		if end < start {
			return echo.NewHTTPError(http.StatusBadRequest, "End must not precede start")
		}
		c.Set(keyStart, start)
		c.Set(keyEnd, end)
		return next(c)
	}
}

// ValidateDataType checks the optional `datatype` query parameter.
func ValidateDataType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		dt, err := locate.ParseDataType(c.QueryParam("datatype"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		c.Set(keyDataType, dt)
		return next(c)
	}
}
