// Package tags registers the form tag library with pongo2.
//
//	{% form form %} ... {% endform %}
//	{% field ["matcher"...] [as field] %} ... {% endfield %}
//	{% if_field "matcher"... %} ... {% else %} ... {% endif_field %}
//	{% field_choices [as choice] %} ... {% empty %} ... {% endfield_choices %}
//	{% field_choice_groups [as optgroup] %} ... {% endfield_choice_groups %}
//	{% hidden_fields %}
//	{{ field|widget_name[:"Name1 Name2"] }} {{ field|widget }} {{ field|help_html }}
//
// A form block is executed twice. The first pass discards its output and
// lets every field tag declare its matchers; the fields of the form are then
// assigned to the field tags (see package assign), and the second pass
// renders each field tag once per captured field.
//
// Field tags may be nested. A nested tag declares its matchers when the
// parent's body runs during the first pass, and renders only on the first
// field of its parent.
package tags
